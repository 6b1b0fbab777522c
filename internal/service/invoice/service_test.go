package invoice

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"storefront/internal/domain"
)

type stubGateway struct {
	err       error
	postPaths []string
	lastBody  any
}

func (s *stubGateway) GetJSON(_ context.Context, path string, _ url.Values, out any) error {
	return s.err
}

func (s *stubGateway) PostJSON(_ context.Context, path string, body, out any) error {
	s.postPaths = append(s.postPaths, path)
	s.lastBody = body
	if s.err != nil {
		return s.err
	}
	if res, ok := out.(*createOrderResponse); ok {
		res.PaymentOrderID = "pp-1"
		res.ApprovalURL = "https://pay.example/approve/pp-1"
	}
	return nil
}

func items() []domain.CheckoutItem {
	return []domain.CheckoutItem{{ProductID: 1, Quantity: 2}}
}

func TestCheckoutRequiresItems(t *testing.T) {
	svc := New(&stubGateway{})
	if err := svc.Checkout(context.Background(), nil); err == nil {
		t.Fatal("empty cart should not check out")
	}
}

func TestCreateOrderGeneratesReference(t *testing.T) {
	gw := &stubGateway{}
	svc := New(gw)

	order, err := svc.CreateOrder(context.Background(), items(), domain.Billing{City: "Paris"})
	if err != nil {
		t.Fatal(err)
	}
	if order.Reference == "" {
		t.Fatal("order should carry a client-generated reference")
	}
	if order.PaymentID != "pp-1" || order.ApprovalURL == "" {
		t.Fatalf("unexpected order: %+v", order)
	}

	other, err := svc.CreateOrder(context.Background(), items(), domain.Billing{})
	if err != nil {
		t.Fatal(err)
	}
	if other.Reference == order.Reference {
		t.Fatal("references must be unique per order")
	}
}

func TestCaptureOncePerPayment(t *testing.T) {
	ctx := context.Background()
	gw := &stubGateway{}
	svc := New(gw)

	order, err := svc.CreateOrder(ctx, items(), domain.Billing{})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Capture(ctx, order, "pp-1"); err != nil {
		t.Fatalf("first capture: %v", err)
	}
	if err := svc.Capture(ctx, order, "pp-1"); !errors.Is(err, ErrAlreadyCaptured) {
		t.Fatalf("second capture: got %v, want ErrAlreadyCaptured", err)
	}

	captures := 0
	for _, p := range gw.postPaths {
		if p == "/invoices/checkout" {
			captures++
		}
	}
	if captures != 1 {
		t.Fatalf("checkout posted %d times, want 1", captures)
	}
}

func TestFailedCaptureCanRetry(t *testing.T) {
	ctx := context.Background()
	gw := &stubGateway{}
	svc := New(gw)
	order, err := svc.CreateOrder(ctx, items(), domain.Billing{})
	if err != nil {
		t.Fatal(err)
	}

	gw.err = domain.ErrUnavailable
	if err := svc.Capture(ctx, order, "pp-1"); !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected transient failure, got %v", err)
	}

	gw.err = nil
	if err := svc.Capture(ctx, order, "pp-1"); err != nil {
		t.Fatalf("retry after failure should be allowed: %v", err)
	}
}

func TestCapturePayloadShape(t *testing.T) {
	ctx := context.Background()
	gw := &stubGateway{}
	svc := New(gw)
	order, err := svc.CreateOrder(ctx, items(), domain.Billing{City: "Paris"})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Capture(ctx, order, "pp-1"); err != nil {
		t.Fatal(err)
	}
	body, ok := gw.lastBody.(map[string]any)
	if !ok {
		t.Fatalf("unexpected body type %T", gw.lastBody)
	}
	if body["paypal_order_id"] != "pp-1" {
		t.Fatalf("payment id missing from payload: %v", body)
	}
	if _, ok := body["items"]; !ok {
		t.Fatalf("items missing from payload: %v", body)
	}
	if _, ok := body["billing"]; !ok {
		t.Fatalf("billing missing from payload: %v", body)
	}
}
