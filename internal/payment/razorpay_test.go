package payment

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	rzperrors "github.com/razorpay/razorpay-go/errors"
)

type scriptedOrders struct {
	responses []func() (map[string]interface{}, error)
	calls     int
}

func (s *scriptedOrders) Create(_ map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	if s.calls >= len(s.responses) {
		return nil, errors.New("unexpected call")
	}
	body, err := s.responses[s.calls]()
	s.calls++
	return body, err
}

func testClient(orders orderCreator) *Client {
	return &Client{
		orders:  orders,
		timeout: time.Second,
		logger:  log.New(io.Discard, "", 0),
	}
}

func TestClient_CreateOrder(t *testing.T) {
	orders := &scriptedOrders{responses: []func() (map[string]interface{}, error){
		func() (map[string]interface{}, error) {
			return map[string]interface{}{"id": "order_abc"}, nil
		},
	}}
	c := testClient(orders)

	id, err := c.CreateOrder(context.Background(), OrderRequest{
		AmountCents: 19900,
		Currency:    "INR",
		Receipt:     "receipt_p1_1",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if id != "order_abc" {
		t.Fatalf("expected order_abc, got %q", id)
	}
	if orders.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", orders.calls)
	}
}

func TestClient_CreateOrder_RetriesOnce(t *testing.T) {
	orders := &scriptedOrders{responses: []func() (map[string]interface{}, error){
		func() (map[string]interface{}, error) { return nil, errors.New("connection reset") },
		func() (map[string]interface{}, error) { return map[string]interface{}{"id": "order_retry"}, nil },
	}}
	c := testClient(orders)

	id, err := c.CreateOrder(context.Background(), OrderRequest{AmountCents: 100, Currency: "INR"})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if id != "order_retry" {
		t.Fatalf("expected order_retry, got %q", id)
	}
	if orders.calls != 2 {
		t.Fatalf("expected 2 provider calls, got %d", orders.calls)
	}
}

func TestClient_CreateOrder_GivesUpAfterSecondFailure(t *testing.T) {
	orders := &scriptedOrders{responses: []func() (map[string]interface{}, error){
		func() (map[string]interface{}, error) { return nil, errors.New("boom") },
		func() (map[string]interface{}, error) { return nil, errors.New("boom again") },
	}}
	c := testClient(orders)

	if _, err := c.CreateOrder(context.Background(), OrderRequest{AmountCents: 100, Currency: "INR"}); err == nil {
		t.Fatal("expected error")
	}
	if orders.calls != 2 {
		t.Fatalf("expected exactly 2 provider calls, got %d", orders.calls)
	}
}

func TestClient_CreateOrder_NoRetryOnProviderRejection(t *testing.T) {
	orders := &scriptedOrders{responses: []func() (map[string]interface{}, error){
		func() (map[string]interface{}, error) {
			return nil, &rzperrors.BadRequestError{Message: "bad request", Err: errors.New("amount must be at least 100")}
		},
		func() (map[string]interface{}, error) { return map[string]interface{}{"id": "order_never"}, nil },
	}}
	c := testClient(orders)

	if _, err := c.CreateOrder(context.Background(), OrderRequest{AmountCents: 1, Currency: "INR"}); err == nil {
		t.Fatal("expected error")
	}
	if orders.calls != 1 {
		t.Fatalf("provider rejection must not be retried, got %d calls", orders.calls)
	}
}

func TestClient_CreateOrder_MissingID(t *testing.T) {
	orders := &scriptedOrders{responses: []func() (map[string]interface{}, error){
		func() (map[string]interface{}, error) { return map[string]interface{}{"status": "created"}, nil },
		func() (map[string]interface{}, error) { return map[string]interface{}{"status": "created"}, nil },
	}}
	c := testClient(orders)

	if _, err := c.CreateOrder(context.Background(), OrderRequest{AmountCents: 100, Currency: "INR"}); err == nil {
		t.Fatal("expected error for response without order id")
	}
}

func TestClient_CreateOrder_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orders := &scriptedOrders{responses: []func() (map[string]interface{}, error){
		func() (map[string]interface{}, error) { return map[string]interface{}{"id": "order_late"}, nil },
	}}
	c := testClient(orders)

	if _, err := c.CreateOrder(ctx, OrderRequest{AmountCents: 100, Currency: "INR"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
