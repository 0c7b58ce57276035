package payment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	rzperrors "github.com/razorpay/razorpay-go/errors"
)

// OrderRequest carries the server-computed charge for one checkout attempt.
type OrderRequest struct {
	AmountCents int64
	Currency    string
	Receipt     string
	ProductID   string
	Email       string
}

// orderCreator matches the razorpay-go order resource so tests can stub it.
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Client wraps the Razorpay SDK with a bounded timeout and a single retry.
// Only order creation retries; verification is handled elsewhere and never
// retried.
type Client struct {
	orders  orderCreator
	timeout time.Duration
	logger  *log.Logger
}

func NewClient(keyID, keySecret string, timeout time.Duration, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	sdk := razorpay.NewClient(keyID, keySecret)
	return &Client{orders: sdk.Order, timeout: timeout, logger: logger}
}

// CreateOrder asks the provider for a new order and returns its identifier.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (string, error) {
	data := map[string]interface{}{
		"amount":   req.AmountCents,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes": map[string]interface{}{
			"product_id": req.ProductID,
			"email":      req.Email,
		},
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			break
		}
		if attempt > 0 {
			c.logger.Printf("payment: retrying order create receipt=%s after error=%v", req.Receipt, lastErr)
		}
		id, err := c.createOnce(ctx, data)
		if err == nil {
			return id, nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

// retryable reports whether an order-creation error is worth one more
// attempt. Provider rejections (bad request, auth failure) are
// deterministic and never retried; network and server-side failures are.
func retryable(err error) bool {
	var badReq *rzperrors.BadRequestError
	return !errors.As(err, &badReq)
}

// createOnce runs the blocking SDK call in a goroutine so the context
// deadline is honored even though the SDK does not accept one.
func (c *Client) createOnce(ctx context.Context, data map[string]interface{}) (string, error) {
	type result struct {
		id  string
		err error
	}
	ch := make(chan result, 1)
	go func() {
		body, err := c.orders.Create(data, nil)
		if err != nil {
			ch <- result{err: err}
			return
		}
		id, ok := body["id"].(string)
		if !ok || id == "" {
			ch <- result{err: fmt.Errorf("provider response missing order id")}
			return
		}
		ch <- result{id: id}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.id, res.err
	}
}
