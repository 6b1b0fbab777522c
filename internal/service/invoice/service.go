package invoice

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"storefront/internal/domain"
)

// ErrAlreadyCaptured is returned when a payment reference is captured twice.
// The backend treats checkout as idempotent-by-reference, but the client
// still guarantees it posts each completed payment exactly once.
var ErrAlreadyCaptured = errors.New("payment already captured")

type gateway interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
	PostJSON(ctx context.Context, path string, body, out any) error
}

// Service wraps the invoice endpoints: purchase history, direct checkout and
// the two-phase payment flow.
type Service struct {
	gw gateway

	mu       sync.Mutex
	captured map[string]bool
}

// New builds the invoice service.
func New(gw gateway) *Service {
	return &Service{gw: gw, captured: make(map[string]bool)}
}

// History returns the authenticated user's past invoices.
func (s *Service) History(ctx context.Context) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	if err := s.gw.GetJSON(ctx, "/invoices/history", nil, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// Checkout posts the cart in one call, for kiosk mode without an external
// payment step.
func (s *Service) Checkout(ctx context.Context, items []domain.CheckoutItem) error {
	if len(items) == 0 {
		return errors.New("cart is empty")
	}
	body := map[string]any{"items": items}
	return s.gw.PostJSON(ctx, "/invoices/", body, nil)
}

// Order is a pending two-phase checkout: created on the backend, waiting for
// approval in the external payment page.
type Order struct {
	Reference   string
	PaymentID   string
	ApprovalURL string
	Items       []domain.CheckoutItem
	Billing     domain.Billing
}

type createOrderResponse struct {
	PaymentOrderID string `json:"paypal_order_id"`
	ApprovalURL    string `json:"approval_url"`
}

// CreateOrder opens a pending order and returns the external approval URL
// the buyer must visit. The client-generated reference keys idempotency.
func (s *Service) CreateOrder(ctx context.Context, items []domain.CheckoutItem, billing domain.Billing) (*Order, error) {
	if len(items) == 0 {
		return nil, errors.New("cart is empty")
	}
	reference := uuid.NewString()
	body := map[string]any{
		"items":     items,
		"billing":   billing,
		"reference": reference,
	}
	var res createOrderResponse
	if err := s.gw.PostJSON(ctx, "/invoices/paypal/orders", body, &res); err != nil {
		return nil, err
	}
	return &Order{
		Reference:   reference,
		PaymentID:   res.PaymentOrderID,
		ApprovalURL: res.ApprovalURL,
		Items:       items,
		Billing:     billing,
	}, nil
}

// Capture confirms an approved payment. At most one capture per payment id
// leaves this client; repeats return ErrAlreadyCaptured without a network
// call.
func (s *Service) Capture(ctx context.Context, order *Order, paymentID string) error {
	if paymentID == "" {
		return errors.New("payment id required")
	}

	s.mu.Lock()
	if s.captured[paymentID] {
		s.mu.Unlock()
		return ErrAlreadyCaptured
	}
	s.captured[paymentID] = true
	s.mu.Unlock()

	body := map[string]any{
		"items":           order.Items,
		"billing":         order.Billing,
		"paypal_order_id": paymentID,
	}
	if err := s.gw.PostJSON(ctx, "/invoices/checkout", body, nil); err != nil {
		// Let the caller retry a failed capture.
		s.mu.Lock()
		delete(s.captured, paymentID)
		s.mu.Unlock()
		return err
	}
	return nil
}
