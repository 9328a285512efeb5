package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"giftcard-store/internal/domain"
	ordersvc "giftcard-store/internal/service/order"
)

type stubGateway struct {
	mu            sync.Mutex
	initiateCalls int
	captureCalls  int
	lastItems     []domain.CartItem
	lastOrderID   string
	initiateRes   *ordersvc.Result
	initiateErr   error
	captureRes    []*ordersvc.Result
	captureErr    error

	// onInitiate runs between the flow releasing its lock and the gateway
	// returning, to simulate a concurrent cart change or close.
	onInitiate func()
}

func (s *stubGateway) Initiate(_ context.Context, items []domain.CartItem) (*ordersvc.Result, error) {
	s.mu.Lock()
	s.initiateCalls++
	s.lastItems = items
	s.mu.Unlock()
	if s.onInitiate != nil {
		s.onInitiate()
	}
	return s.initiateRes, s.initiateErr
}

func (s *stubGateway) Capture(_ context.Context, orderID string) (*ordersvc.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastOrderID = orderID
	idx := s.captureCalls
	s.captureCalls++
	if idx >= len(s.captureRes) {
		idx = len(s.captureRes) - 1
	}
	if s.captureErr != nil {
		return nil, s.captureErr
	}
	return s.captureRes[idx], nil
}

func items15x2() []domain.CartItem {
	return []domain.CartItem{
		{
			LineID:   "l1",
			GiftCard: domain.GiftCard{ID: "gift-card-15", Name: "$15 Gift Card", ValueCents: 1500, Currency: "USD"},
			Quantity: 2,
		},
	}
}

func readyFlow(t *testing.T, gw Gateway) *Flow {
	t.Helper()
	f := NewFlow(gw)
	if err := f.Begin(items15x2()); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := f.ScriptReady(); err != nil {
		t.Fatalf("script ready: %v", err)
	}
	return f
}

func TestBeginRejectsEmptyCart(t *testing.T) {
	f := NewFlow(&stubGateway{})
	if err := f.Begin(nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.State() != StateIdle {
		t.Fatalf("state must stay idle, got %s", f.State())
	}
}

func TestScriptFailureIsTerminal(t *testing.T) {
	f := NewFlow(&stubGateway{})
	if err := f.Begin(items15x2()); err != nil {
		t.Fatalf("begin: %v", err)
	}
	f.ScriptFailed("Failed to load payment script")
	if f.State() != StateFailed {
		t.Fatalf("expected failed, got %s", f.State())
	}
	if f.FailureMessage() != "Failed to load payment script" {
		t.Fatalf("unexpected message: %q", f.FailureMessage())
	}
}

func TestCreateOrderHappyPath(t *testing.T) {
	gw := &stubGateway{initiateRes: &ordersvc.Result{StatusCode: 201, Body: []byte(`{"id":"ORDER-1","status":"CREATED"}`)}}
	f := readyFlow(t, gw)

	id, err := f.CreateOrder(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != "ORDER-1" {
		t.Fatalf("unexpected order id: %s", id)
	}
	if f.State() != StateAwaitingApproval {
		t.Fatalf("expected awaitingApproval, got %s", f.State())
	}
	if len(gw.lastItems) != 1 || gw.lastItems[0].Quantity != 2 {
		t.Fatalf("snapshot not submitted: %+v", gw.lastItems)
	}
}

func TestCreateOrderMissingID(t *testing.T) {
	gw := &stubGateway{initiateRes: &ordersvc.Result{StatusCode: 422, Body: []byte(`{"details":[{"issue":"INVALID_REQUEST","description":"bad"}],"debug_id":"d1"}`)}}
	f := readyFlow(t, gw)

	_, err := f.CreateOrder(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if f.State() != StateFailed {
		t.Fatalf("expected failed, got %s", f.State())
	}
	msg := f.FailureMessage()
	if want := "Could not initiate checkout: INVALID_REQUEST bad (d1)"; msg != want {
		t.Fatalf("message %q, want %q", msg, want)
	}
}

func TestCreateOrderRejectsReentry(t *testing.T) {
	gw := &stubGateway{initiateRes: &ordersvc.Result{StatusCode: 201, Body: []byte(`{"id":"ORDER-1"}`)}}
	f := readyFlow(t, gw)

	if _, err := f.CreateOrder(context.Background()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.CreateOrder(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
	if gw.initiateCalls != 1 {
		t.Fatalf("expected one initiate call, got %d", gw.initiateCalls)
	}
}

func TestCreateOrderStaleAfterSnapshotChange(t *testing.T) {
	gw := &stubGateway{initiateRes: &ordersvc.Result{StatusCode: 201, Body: []byte(`{"id":"ORDER-1"}`)}}
	f := readyFlow(t, gw)

	newItems := items15x2()
	newItems[0].Quantity = 5
	gw.onInitiate = func() {
		if err := f.UpdateSnapshot(newItems); err != nil {
			t.Errorf("update snapshot: %v", err)
		}
	}

	_, err := f.CreateOrder(context.Background())
	if !errors.Is(err, ErrStale) {
		t.Fatalf("expected stale, got %v", err)
	}
	if f.State() != StateReady {
		t.Fatalf("late response must not override rebind, got %s", f.State())
	}
}

func TestCreateOrderStaleAfterClose(t *testing.T) {
	gw := &stubGateway{initiateRes: &ordersvc.Result{StatusCode: 201, Body: []byte(`{"id":"ORDER-1"}`)}}
	f := readyFlow(t, gw)
	gw.onInitiate = f.Close

	if _, err := f.CreateOrder(context.Background()); !errors.Is(err, ErrStale) {
		t.Fatalf("expected stale, got %v", err)
	}
}

func TestApproveInstrumentDeclinedRestarts(t *testing.T) {
	gw := &stubGateway{
		initiateRes: &ordersvc.Result{StatusCode: 201, Body: []byte(`{"id":"ORDER-1"}`)},
		captureRes: []*ordersvc.Result{
			{StatusCode: 422, Body: []byte(`{"details":[{"issue":"INSTRUMENT_DECLINED","description":"declined"}],"debug_id":"d1"}`)},
			{StatusCode: 201, Body: []byte(`{"id":"ORDER-2","purchase_units":[{"payments":{"captures":[{"id":"CAP-1","status":"COMPLETED"}]}}]}`)},
		},
	}
	f := readyFlow(t, gw)

	if _, err := f.CreateOrder(context.Background()); err != nil {
		t.Fatalf("create: %v", err)
	}
	res, err := f.Approve(context.Background())
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !res.Restart || res.Receipt != nil {
		t.Fatalf("expected restart result, got %+v", res)
	}
	if f.State() != StateReady {
		t.Fatalf("decline must re-arm the flow, got %s", f.State())
	}

	// The restarted attempt runs create + approve again and succeeds.
	if _, err := f.CreateOrder(context.Background()); err != nil {
		t.Fatalf("restarted create: %v", err)
	}
	res, err = f.Approve(context.Background())
	if err != nil {
		t.Fatalf("restarted approve: %v", err)
	}
	if res.Receipt == nil || res.Receipt.Transaction.ID != "CAP-1" {
		t.Fatalf("unexpected receipt: %+v", res.Receipt)
	}
}

func TestApproveNonRecoverableDetail(t *testing.T) {
	gw := &stubGateway{
		initiateRes: &ordersvc.Result{StatusCode: 201, Body: []byte(`{"id":"ORDER-1"}`)},
		captureRes: []*ordersvc.Result{
			{StatusCode: 422, Body: []byte(`{"details":[{"issue":"TRANSACTION_REFUSED","description":"refused"}],"debug_id":"dbg-9"}`)},
		},
	}
	f := readyFlow(t, gw)
	if _, err := f.CreateOrder(context.Background()); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := f.Approve(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if f.State() != StateFailed {
		t.Fatalf("expected failed, got %s", f.State())
	}
	if want := "Transaction could not be processed: refused (dbg-9)"; f.FailureMessage() != want {
		t.Fatalf("message %q, want %q", f.FailureMessage(), want)
	}
}

func TestApproveMissingPurchaseUnits(t *testing.T) {
	gw := &stubGateway{
		initiateRes: &ordersvc.Result{StatusCode: 201, Body: []byte(`{"id":"ORDER-1"}`)},
		captureRes:  []*ordersvc.Result{{StatusCode: 200, Body: []byte(`{"id":"ORDER-1","status":"COMPLETED"}`)}},
	}
	f := readyFlow(t, gw)
	if _, err := f.CreateOrder(context.Background()); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.Approve(context.Background()); err == nil {
		t.Fatal("expected error for body without purchase units")
	}
	if f.State() != StateFailed {
		t.Fatalf("expected failed, got %s", f.State())
	}
}

func TestApproveSuccessBuildsReceipt(t *testing.T) {
	gw := &stubGateway{
		initiateRes: &ordersvc.Result{StatusCode: 201, Body: []byte(`{"id":"ORDER-1"}`)},
		captureRes: []*ordersvc.Result{
			{StatusCode: 201, Body: []byte(`{"id":"ORDER-1","purchase_units":[{"payments":{"captures":[{"id":"CAP-1","status":"COMPLETED"}]}}]}`)},
		},
	}
	f := readyFlow(t, gw)
	if _, err := f.CreateOrder(context.Background()); err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := f.Approve(context.Background())
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	r := res.Receipt
	if r == nil {
		t.Fatal("expected receipt")
	}
	if r.OrderID != "ORDER-1" || r.Transaction.ID != "CAP-1" || r.Transaction.Status != "COMPLETED" {
		t.Fatalf("unexpected receipt: %+v", r)
	}
	if r.TotalCents != 3000 {
		t.Fatalf("expected total 3000, got %d", r.TotalCents)
	}
	if len(r.Items) != 1 || r.Items[0].GiftCard.ID != "gift-card-15" {
		t.Fatalf("receipt must carry the snapshot: %+v", r.Items)
	}
	if f.State() != StateSucceeded {
		t.Fatalf("expected succeeded, got %s", f.State())
	}
}

func TestApproveFallsBackToAuthorization(t *testing.T) {
	gw := &stubGateway{
		initiateRes: &ordersvc.Result{StatusCode: 201, Body: []byte(`{"id":"ORDER-1"}`)},
		captureRes: []*ordersvc.Result{
			{StatusCode: 201, Body: []byte(`{"id":"ORDER-1","purchase_units":[{"payments":{"authorizations":[{"id":"AUTH-1","status":"CREATED"}]}}]}`)},
		},
	}
	f := readyFlow(t, gw)
	if _, err := f.CreateOrder(context.Background()); err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := f.Approve(context.Background())
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if res.Receipt == nil || res.Receipt.Transaction.ID != "AUTH-1" {
		t.Fatalf("unexpected receipt: %+v", res.Receipt)
	}
}

func TestWidgetErrorAndRetry(t *testing.T) {
	gw := &stubGateway{initiateRes: &ordersvc.Result{StatusCode: 201, Body: []byte(`{"id":"ORDER-1"}`)}}
	f := readyFlow(t, gw)

	f.WidgetError()
	if f.State() != StateFailed {
		t.Fatalf("expected failed, got %s", f.State())
	}
	if f.FailureMessage() == "" {
		t.Fatal("expected a retry-prompting message")
	}

	if err := f.Retry(); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if f.State() != StateReady {
		t.Fatalf("expected ready after retry, got %s", f.State())
	}
	if _, err := f.CreateOrder(context.Background()); err != nil {
		t.Fatalf("create after retry: %v", err)
	}
}

func TestBootstrapLoadsOnce(t *testing.T) {
	calls := 0
	b := NewBootstrap(func() (ScriptConfig, error) {
		calls++
		return ScriptConfig{ClientID: "pub-1", Currency: "USD"}, nil
	})
	for i := 0; i < 3; i++ {
		cfg, err := b.Config()
		if err != nil {
			t.Fatalf("config: %v", err)
		}
		if cfg.ClientID != "pub-1" {
			t.Fatalf("unexpected config: %+v", cfg)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one load, got %d", calls)
	}
}

func TestBootstrapFailureIsSticky(t *testing.T) {
	calls := 0
	b := NewBootstrap(func() (ScriptConfig, error) {
		calls++
		return ScriptConfig{}, errors.New("load failed")
	})
	for i := 0; i < 2; i++ {
		if _, err := b.Config(); err == nil {
			t.Fatal("expected error")
		}
	}
	if calls != 1 {
		t.Fatalf("failure must not be retried, got %d loads", calls)
	}
}
