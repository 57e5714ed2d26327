package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/storefront/commerce-system/internal/core/domain"
	"github.com/storefront/commerce-system/internal/core/ports"
)

type stubOrderService struct {
	purchaseFn    func(ctx context.Context, in ports.PurchaseInput) (*ports.PurchaseResult, error)
	listAllFn     func(ctx context.Context) ([]ports.OrderDetail, error)
	listForUserFn func(ctx context.Context, userID int64) ([]ports.OrderDetail, error)
	deleteFn      func(ctx context.Context, id int64) error
}

func (s *stubOrderService) Purchase(ctx context.Context, in ports.PurchaseInput) (*ports.PurchaseResult, error) {
	return s.purchaseFn(ctx, in)
}

func (s *stubOrderService) ListAll(ctx context.Context) ([]ports.OrderDetail, error) {
	return s.listAllFn(ctx)
}

func (s *stubOrderService) ListForUser(ctx context.Context, userID int64) ([]ports.OrderDetail, error) {
	return s.listForUserFn(ctx, userID)
}

func (s *stubOrderService) Delete(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, userID int64, role string) echo.Context {
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	c.Set("role", role)
	return c
}

func TestOrderHandler_Purchase_Success(t *testing.T) {
	e := newEcho()
	stub := &stubOrderService{
		purchaseFn: func(ctx context.Context, in ports.PurchaseInput) (*ports.PurchaseResult, error) {
			if in.UserID != 7 || in.ProductID != 3 || in.Quantity != 2 {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.PurchaseResult{OrderID: 11, TotalCost: decimal.RequireFromString("25.00")}, nil
		},
	}
	handler := NewOrderHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/purchase", strings.NewReader(`{"product_id":3,"quantity":2}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, 7, domain.RoleUser)

	if err := handler.Purchase(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["success"] != true || resp["order_id"] != float64(11) || resp["total_cost"] != "25" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestOrderHandler_Purchase_InsufficientInventory(t *testing.T) {
	e := newEcho()
	stub := &stubOrderService{
		purchaseFn: func(ctx context.Context, in ports.PurchaseInput) (*ports.PurchaseResult, error) {
			return nil, &domain.InsufficientInventoryError{Available: 2}
		},
	}
	handler := NewOrderHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/purchase", strings.NewReader(`{"product_id":3,"quantity":5}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, 7, domain.RoleUser)

	if err := handler.Purchase(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["success"] != false || resp["message"] != "Insufficient inventory (Available: 2)." {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestOrderHandler_Purchase_InsufficientDeposit(t *testing.T) {
	e := newEcho()
	stub := &stubOrderService{
		purchaseFn: func(ctx context.Context, in ports.PurchaseInput) (*ports.PurchaseResult, error) {
			return nil, domain.ErrInsufficientDeposit
		},
	}
	handler := NewOrderHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/purchase", strings.NewReader(`{"product_id":3,"quantity":1}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, 7, domain.RoleUser)

	if err := handler.Purchase(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["success"] != false || resp["message"] != "Insufficient deposit." {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestOrderHandler_Purchase_TransactionFailure(t *testing.T) {
	e := newEcho()
	stub := &stubOrderService{
		purchaseFn: func(ctx context.Context, in ports.PurchaseInput) (*ports.PurchaseResult, error) {
			return nil, domain.ErrTransactionFailed
		},
	}
	handler := NewOrderHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/purchase", strings.NewReader(`{"product_id":3,"quantity":1}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, 7, domain.RoleUser)

	// Infrastructure failures escape to the central error handler.
	err := handler.Purchase(c)
	if !errors.Is(err, domain.ErrTransactionFailed) {
		t.Fatalf("expected ErrTransactionFailed to propagate, got %v", err)
	}
}

func TestOrderHandler_Purchase_MissingClaims(t *testing.T) {
	e := newEcho()
	handler := NewOrderHandler(&stubOrderService{})

	req := httptest.NewRequest(http.MethodPost, "/purchase", strings.NewReader(`{"product_id":3,"quantity":1}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Purchase(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestOrderHandler_ListForUser(t *testing.T) {
	e := newEcho()
	stub := &stubOrderService{
		listForUserFn: func(ctx context.Context, userID int64) ([]ports.OrderDetail, error) {
			if userID != 7 {
				t.Fatalf("expected user 7, got %d", userID)
			}
			return []ports.OrderDetail{{ID: 1, UserID: 7, ProductID: 3, ProductName: "widget", Quantity: 2}}, nil
		},
	}
	handler := NewOrderHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/user/orders", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, 7, domain.RoleUser)

	if err := handler.ListForUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	orders, ok := resp["orders"].([]any)
	if !ok || len(orders) != 1 {
		t.Fatalf("expected one order, got %+v", resp)
	}
	first := orders[0].(map[string]any)
	if first["product_name"] != "widget" {
		t.Fatalf("expected product name, got %+v", first)
	}
}

func TestOrderHandler_Delete_NotFound(t *testing.T) {
	e := newEcho()
	stub := &stubOrderService{
		deleteFn: func(ctx context.Context, id int64) error {
			return domain.ErrOrderNotFound
		},
	}
	handler := NewOrderHandler(stub)

	req := httptest.NewRequest(http.MethodDelete, "/order", strings.NewReader(`{"order_id":42}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["success"] != false || resp["message"] != "Order does not exist." {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}
