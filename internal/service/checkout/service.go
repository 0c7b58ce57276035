package checkout

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"notes-store/internal/domain"
	"notes-store/internal/payment"

	"github.com/google/uuid"
)

var (
	// ErrOrderCreation is returned when the payment provider rejects or
	// fails the order-creation call.
	ErrOrderCreation = errors.New("order creation failed")
	// ErrSignatureInvalid is returned on a callback signature mismatch. The
	// caller must not reveal which part of the verification failed.
	ErrSignatureInvalid = errors.New("signature invalid")
	// ErrReplayedVerification is returned when an already-verified order is
	// verified again: one grant per order, ever.
	ErrReplayedVerification = errors.New("verification already consumed")
	// ErrIdempotencyMismatch is returned when an idempotency key is reused
	// for a different product than the one it was first submitted with.
	ErrIdempotencyMismatch = errors.New("idempotency key reused for a different product")
)

// Provider creates orders at the payment provider.
type Provider interface {
	CreateOrder(ctx context.Context, req payment.OrderRequest) (string, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type orderRepo interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByProviderOrderID(ctx context.Context, providerOrderID string) (*domain.Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	MarkVerified(ctx context.Context, providerOrderID string) (*domain.Order, error)
	MarkFailed(ctx context.Context, providerOrderID string) error
}

type grantRepo interface {
	Create(ctx context.Context, g domain.DownloadGrant) error
	Consume(ctx context.Context, token string) (*domain.DownloadGrant, error)
}

// Service drives the checkout flow: server-priced order creation, HMAC
// verification of the payment callback, and single-use download grants.
type Service struct {
	products productRepo
	orders   orderRepo
	grants   grantRepo
	provider Provider
	signer   *payment.Signer

	keyID    string
	grantTTL time.Duration
	logger   *log.Logger
}

func New(products productRepo, orders orderRepo, grants grantRepo, provider Provider, signer *payment.Signer, keyID string, grantTTL time.Duration, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		products: products,
		orders:   orders,
		grants:   grants,
		provider: provider,
		signer:   signer,
		keyID:    keyID,
		grantTTL: grantTTL,
		logger:   logger,
	}
}

// CreateOrderInput names the fields the create-order endpoint accepts. Any
// client-supplied amount is dropped before it gets here: pricing comes from
// the catalog only.
type CreateOrderInput struct {
	ProductID      string
	Email          string
	IdempotencyKey string
}

// CreateOrderResult is handed back to the client to open the payment widget.
type CreateOrderResult struct {
	Order   domain.Order
	KeyID   string
	Product domain.Product
}

// CreateOrder prices the product from the catalog, creates a provider order
// for that amount and persists a pending order row. Duplicate submissions
// carrying the same idempotency key return the original order.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return nil, domain.ErrNotFound
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		existing, err := s.orders.GetByIdempotencyKey(ctx, key)
		if err == nil {
			if existing.ProductID != product.ID {
				return nil, ErrIdempotencyMismatch
			}
			s.logger.Printf("checkout: reusing order %s for idempotency key", existing.ProviderOrderID)
			return &CreateOrderResult{Order: *existing, KeyID: s.keyID, Product: *product}, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	receipt := fmt.Sprintf("receipt_%s_%d", product.ID, time.Now().UnixMilli())
	providerOrderID, err := s.provider.CreateOrder(ctx, payment.OrderRequest{
		AmountCents: product.PriceCents,
		Currency:    product.Currency,
		Receipt:     receipt,
		ProductID:   product.ID,
		Email:       in.Email,
	})
	if err != nil {
		s.logger.Printf("checkout: provider order create failed product_id=%s: %v", product.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrOrderCreation, err)
	}

	o := domain.Order{
		ID:              uuid.NewString(),
		ProviderOrderID: providerOrderID,
		ProductID:       product.ID,
		Email:           strings.TrimSpace(in.Email),
		AmountCents:     product.PriceCents,
		Currency:        product.Currency,
		Receipt:         receipt,
		Status:          domain.OrderPending,
	}
	if key != "" {
		o.IdempotencyKey = &key
	}

	created, err := s.orders.Create(ctx, o)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) && key != "" {
			// Lost a race with a duplicate submission; the first insert wins.
			existing, getErr := s.orders.GetByIdempotencyKey(ctx, key)
			if getErr == nil {
				if existing.ProductID != product.ID {
					return nil, ErrIdempotencyMismatch
				}
				return &CreateOrderResult{Order: *existing, KeyID: s.keyID, Product: *product}, nil
			}
		}
		return nil, err
	}

	return &CreateOrderResult{Order: *created, KeyID: s.keyID, Product: *product}, nil
}

// VerifyInput carries the payment callback identifiers the client forwards.
type VerifyInput struct {
	OrderID   string
	PaymentID string
	Signature string
}

// VerifyResult holds the download locator released on success.
type VerifyResult struct {
	DownloadPath string
}

// Verify recomputes the callback signature and, on the first match for this
// order, mints a single-use download grant. The order transitions to
// verified exactly once; replays are rejected rather than re-granted.
func (s *Service) Verify(ctx context.Context, in VerifyInput) (*VerifyResult, error) {
	order, err := s.orders.GetByProviderOrderID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}

	if !s.signer.Verify(in.OrderID, in.PaymentID, in.Signature) {
		if err := s.orders.MarkFailed(ctx, in.OrderID); err != nil {
			s.logger.Printf("checkout: mark failed %s: %v", in.OrderID, err)
		}
		return nil, ErrSignatureInvalid
	}

	if _, err := s.orders.MarkVerified(ctx, in.OrderID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		// The order exists but did not transition: already verified. Keep
		// going so a verified order whose grant never landed (transient
		// store failure after the transition) still gets one; a true replay
		// is stopped below by the unique grant per order.
	}

	product, err := s.products.GetByID(ctx, order.ProductID)
	if err != nil {
		return nil, err
	}
	if product.FileKey == "" {
		s.logger.Printf("checkout: product %s has no backing file", product.ID)
		return nil, domain.ErrNotFound
	}

	token, err := randomToken()
	if err != nil {
		return nil, err
	}
	g := domain.DownloadGrant{
		Token:     token,
		OrderID:   order.ID,
		FileKey:   product.FileKey,
		ExpiresAt: time.Now().Add(s.grantTTL),
	}
	if err := s.grants.Create(ctx, g); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, ErrReplayedVerification
		}
		return nil, err
	}

	s.logger.Printf("checkout: order %s verified, grant issued", in.OrderID)
	return &VerifyResult{DownloadPath: "/secure-download/" + token}, nil
}

// RedeemDownload consumes a grant token and returns the backing file key.
// Unknown, used and expired tokens are indistinguishable to the caller.
func (s *Service) RedeemDownload(ctx context.Context, token string) (string, error) {
	g, err := s.grants.Consume(ctx, token)
	if err != nil {
		return "", err
	}
	return g.FileKey, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
