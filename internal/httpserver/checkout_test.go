package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"notes-store/internal/domain"
	"notes-store/internal/service/checkout"

	"github.com/gin-gonic/gin"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubCatalogSvc struct {
	products []domain.Product
	err      error
}

func (s *stubCatalogSvc) List(_ context.Context) ([]domain.Product, error) {
	return s.products, s.err
}

type stubCheckoutSvc struct {
	createRes *checkout.CreateOrderResult
	createErr error
	createIn  []checkout.CreateOrderInput

	verifyRes *checkout.VerifyResult
	verifyErr error

	redeemKeys []string
	redeemErr  error
	redeemed   []string
}

func (s *stubCheckoutSvc) CreateOrder(_ context.Context, in checkout.CreateOrderInput) (*checkout.CreateOrderResult, error) {
	s.createIn = append(s.createIn, in)
	return s.createRes, s.createErr
}

func (s *stubCheckoutSvc) Verify(_ context.Context, _ checkout.VerifyInput) (*checkout.VerifyResult, error) {
	return s.verifyRes, s.verifyErr
}

func (s *stubCheckoutSvc) RedeemDownload(_ context.Context, token string) (string, error) {
	s.redeemed = append(s.redeemed, token)
	if s.redeemErr != nil {
		return "", s.redeemErr
	}
	if len(s.redeemKeys) == 0 {
		return "", domain.ErrNotFound
	}
	key := s.redeemKeys[0]
	s.redeemKeys = s.redeemKeys[1:]
	return key, nil
}

func testRouter(t *testing.T, catalogSvc CatalogService, checkoutSvc CheckoutService, filesDir string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, Deps{
		CatalogSvc:  catalogSvc,
		CheckoutSvc: checkoutSvc,
		FilesDir:    filesDir,
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func TestCreateOrderHandler_IgnoresClientAmount(t *testing.T) {
	svc := &stubCheckoutSvc{
		createRes: &checkout.CreateOrderResult{
			Order:   domain.Order{ProviderOrderID: "order_abc", AmountCents: 19900, Currency: "INR"},
			KeyID:   "rzp_test_key",
			Product: domain.Product{ID: "p1", Title: "Operating Systems Notes", PriceCents: 19900, Currency: "INR"},
		},
	}
	router := testRouter(t, &stubCatalogSvc{}, svc, "")

	// The client tries to dictate a one-rupee charge.
	body := `{"product_id":"p1","amount":1,"email":"buyer@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/create-order", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if len(svc.createIn) != 1 || svc.createIn[0].ProductID != "p1" {
		t.Fatalf("unexpected service input %+v", svc.createIn)
	}

	var resp struct {
		OrderID string  `json:"orderId"`
		Key     string  `json:"key"`
		Amount  int64   `json:"amount"`
		Product struct {
			ID    string  `json:"id"`
			Price float64 `json:"price"`
		} `json:"product"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.OrderID != "order_abc" || resp.Key != "rzp_test_key" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Amount != 19900 {
		t.Fatalf("expected server-priced amount 19900, got %d", resp.Amount)
	}
	if resp.Product.Price != 199.0 {
		t.Fatalf("expected product price 199.00, got %v", resp.Product.Price)
	}
}

func TestCreateOrderHandler_ProductNotFound(t *testing.T) {
	svc := &stubCheckoutSvc{createErr: domain.ErrNotFound}
	router := testRouter(t, &stubCatalogSvc{}, svc, "")

	body := `{"productId":"missing","email":"buyer@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/create-order", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCreateOrderHandler_ProviderFailure(t *testing.T) {
	svc := &stubCheckoutSvc{createErr: checkout.ErrOrderCreation}
	router := testRouter(t, &stubCatalogSvc{}, svc, "")

	body := `{"productId":"p1","email":"buyer@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/create-order", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d body=%s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "order creation failed") {
		t.Fatalf("internal error detail leaked: %s", rec.Body.String())
	}
}

func TestCreateOrderHandler_IdempotencyKeyConflict(t *testing.T) {
	svc := &stubCheckoutSvc{createErr: checkout.ErrIdempotencyMismatch}
	router := testRouter(t, &stubCatalogSvc{}, svc, "")

	body := `{"productId":"p2","email":"buyer@example.com","idempotencyKey":"idem-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/create-order", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCreateOrderHandler_MissingProductID(t *testing.T) {
	router := testRouter(t, &stubCatalogSvc{}, &stubCheckoutSvc{}, "")

	req := httptest.NewRequest(http.MethodPost, "/api/create-order", strings.NewReader(`{"email":"a@b.c"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestVerifyPaymentHandler_Success(t *testing.T) {
	svc := &stubCheckoutSvc{verifyRes: &checkout.VerifyResult{DownloadPath: "/secure-download/tok123"}}
	router := testRouter(t, &stubCatalogSvc{}, svc, "")

	body := `{"order_id":"order_abc","payment_id":"pay_123","signature":"sig"}`
	req := httptest.NewRequest(http.MethodPost, "/api/verify-payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["success"] != true {
		t.Fatalf("expected success=true, got %v", resp["success"])
	}
	if resp["downloadLink"] != "/secure-download/tok123" || resp["download_url"] != "/secure-download/tok123" {
		t.Fatalf("unexpected download fields: %v", resp)
	}
}

func TestVerifyPaymentHandler_BadSignature(t *testing.T) {
	svc := &stubCheckoutSvc{verifyErr: checkout.ErrSignatureInvalid}
	router := testRouter(t, &stubCatalogSvc{}, svc, "")

	body := `{"order_id":"order_abc","payment_id":"pay_123","signature":"tampered"}`
	req := httptest.NewRequest(http.MethodPost, "/api/verify-payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"success":false`) {
		t.Fatalf("expected success=false, got %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "downloadLink") || strings.Contains(rec.Body.String(), "download_url") {
		t.Fatalf("download field present on failed verification: %s", rec.Body.String())
	}
}

func TestVerifyPaymentHandler_UnknownOrderLooksLikeBadSignature(t *testing.T) {
	badSig := &stubCheckoutSvc{verifyErr: checkout.ErrSignatureInvalid}
	unknown := &stubCheckoutSvc{verifyErr: domain.ErrNotFound}

	body := `{"order_id":"order_x","payment_id":"pay_1","signature":"sig"}`
	var codes []int
	var bodies []string
	for _, svc := range []*stubCheckoutSvc{badSig, unknown} {
		router := testRouter(t, &stubCatalogSvc{}, svc, "")
		req := httptest.NewRequest(http.MethodPost, "/api/verify-payment", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		bodies = append(bodies, rec.Body.String())
	}

	if codes[0] != codes[1] || bodies[0] != bodies[1] {
		t.Fatalf("responses must be indistinguishable: %d %q vs %d %q", codes[0], bodies[0], codes[1], bodies[1])
	}
}

func TestVerifyPaymentHandler_Replay(t *testing.T) {
	svc := &stubCheckoutSvc{verifyErr: checkout.ErrReplayedVerification}
	router := testRouter(t, &stubCatalogSvc{}, svc, "")

	body := `{"order_id":"order_abc","payment_id":"pay_123","signature":"sig"}`
	req := httptest.NewRequest(http.MethodPost, "/api/verify-payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestPaymentSuccessAliasRoute(t *testing.T) {
	svc := &stubCheckoutSvc{verifyRes: &checkout.VerifyResult{DownloadPath: "/secure-download/tok123"}}
	router := testRouter(t, &stubCatalogSvc{}, svc, "")

	body := `{"order_id":"order_abc","payment_id":"pay_123","signature":"sig"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payment-success", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from alias route, got %d body=%s", rec.Code, rec.Body.String())
	}
}
