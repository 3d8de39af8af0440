package register

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openstudio/register-gateway/pkg/config"
	"github.com/openstudio/register-gateway/pkg/enums"
)

type stubPricing struct {
	outcome *SubmitOutcome
	err     error

	calls       int
	gotDraft    *Draft
	gotFinalize bool
}

func (s *stubPricing) SubmitDraft(ctx context.Context, draft *Draft, finalize bool) (*SubmitOutcome, error) {
	s.calls++
	s.gotDraft = draft.Clone()
	s.gotFinalize = finalize
	if s.err != nil {
		return nil, s.err
	}
	return s.outcome, nil
}

func testConfig() config.RegisterConfig {
	return config.RegisterConfig{
		PayAtDoor:               true,
		CurrencySymbol:          "$",
		DropInLabel:             "Drop-in",
		DiscountLabel:           "Discount",
		VoucherLabel:            "Voucher",
		AddonLabel:              "Add-on",
		SubtotalLabel:           "Subtotal",
		TaxesLabel:              "Taxes",
		ItemSingular:            "item",
		ItemPlural:              "items",
		OutstandingText:         "Outstanding balance",
		MultipleVoucherMessage:  "only one voucher",
		EmptyCartVoucherMessage: "cart is empty",
		TransportErrorMessage:   "server unreachable",
	}
}

func newTestService(t *testing.T, pricing PricingClient) (Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore(time.Hour)
	svc, err := NewService(store, pricing, testConfig(), nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, store
}

func acceptedOutcome(invoice *Draft) *SubmitOutcome {
	return &SubmitOutcome{Status: StatusSuccess, Invoice: invoice}
}

func classInput(choiceID string) AddItemInput {
	eventID := 12
	return AddItemInput{
		Type:        enums.ItemTypeEventRegistration,
		ChoiceID:    choiceID,
		Description: "Salsa Level 1",
		GrossTotal:  decimal.NewFromInt(15),
		EventID:     &eventID,
	}
}

func TestAddItemAdoptsServerInvoice(t *testing.T) {
	invoice := NewDraft(true)
	id := "42"
	invoice.ID = &id
	invoice.ItemCount = 1
	invoice.GrossTotal = decimal.NewFromInt(15)
	invoice.OutstandingBalance = decimal.NewFromInt(15)
	invoice.Items = []LineItem{{
		Type:        enums.ItemTypeEventRegistration,
		ChoiceID:    "c1",
		Description: "Salsa Level 1",
		GrossTotal:  decimal.NewFromInt(15),
	}}

	pricing := &stubPricing{outcome: acceptedOutcome(invoice)}
	svc, store := newTestService(t, pricing)

	view, err := svc.AddItem(context.Background(), "s1", classInput("c1"))
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	if pricing.calls != 1 {
		t.Fatalf("expected 1 submit, got %d", pricing.calls)
	}
	if len(pricing.gotDraft.Items) != 1 || pricing.gotDraft.Items[0].ChoiceID != "c1" {
		t.Fatalf("submitted draft missing item: %+v", pricing.gotDraft.Items)
	}
	if view.ItemCount != 1 || !view.ShowSubmit {
		t.Fatalf("expected itemCount 1 and submit enabled, got %+v", view)
	}
	if view.Total != "$15.00" {
		t.Fatalf("expected total $15.00, got %s", view.Total)
	}

	state, err := store.Load(context.Background(), "s1")
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.Draft.ID == nil || *state.Draft.ID != "42" {
		t.Fatalf("expected server invoice adopted, got id %v", state.Draft.ID)
	}
}

func TestAddItemRollsBackOnTransportFailure(t *testing.T) {
	pricing := &stubPricing{err: errors.New("connection refused")}
	svc, store := newTestService(t, pricing)

	view, err := svc.AddItem(context.Background(), "s1", classInput("c1"))
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	if len(view.Alerts) != 1 {
		t.Fatalf("expected one alert, got %d", len(view.Alerts))
	}
	if view.Alerts[0].Level != enums.AlertLevelDanger || view.Alerts[0].Message != "server unreachable" {
		t.Fatalf("unexpected alert: %+v", view.Alerts[0])
	}
	if len(view.Lines) != 0 {
		t.Fatalf("expected cart rolled back, got %d lines", len(view.Lines))
	}

	state, err := store.Load(context.Background(), "s1")
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if len(state.Draft.Items) != 0 {
		t.Fatalf("expected stored draft rolled back, got %+v", state.Draft.Items)
	}
}

func TestAddItemRejectsSecondVoucherLocally(t *testing.T) {
	pricing := &stubPricing{outcome: acceptedOutcome(nil)}
	svc, store := newTestService(t, pricing)

	existing := NewDraft(true)
	existing.Voucher.VoucherID = "SPRING"
	if err := store.Save(context.Background(), "s1", &SessionState{Draft: existing}); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	input := classInput("c1")
	input.VoucherID = "SUMMER"
	view, err := svc.AddItem(context.Background(), "s1", input)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	if pricing.calls != 0 {
		t.Fatalf("expected no submit, got %d", pricing.calls)
	}
	if len(view.Alerts) != 1 || view.Alerts[0].Message != "only one voucher" {
		t.Fatalf("expected voucher rejection alert, got %+v", view.Alerts)
	}
}

func TestAddItemMergesQuantityForExistingChoice(t *testing.T) {
	pricing := &stubPricing{outcome: acceptedOutcome(nil)}
	svc, store := newTestService(t, pricing)

	variantID := 7
	existing := NewDraft(true)
	existing.Items = []LineItem{{
		Type:       enums.ItemTypeMerchItem,
		ChoiceID:   "shirt-m",
		GrossTotal: decimal.NewFromInt(20),
		Quantity:   2,
		VariantID:  &variantID,
	}}
	if err := store.Save(context.Background(), "s1", &SessionState{Draft: existing}); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	input := AddItemInput{
		Type:           enums.ItemTypeMerchItem,
		ChoiceID:       "shirt-m",
		Description:    "T-shirt (M)",
		GrossTotal:     decimal.NewFromInt(20),
		VariantID:      &variantID,
		Quantity:       3,
		UpdateQuantity: true,
	}
	if _, err := svc.AddItem(context.Background(), "s1", input); err != nil {
		t.Fatalf("add item: %v", err)
	}

	if len(pricing.gotDraft.Items) != 1 {
		t.Fatalf("expected merged line, got %d", len(pricing.gotDraft.Items))
	}
	if got := pricing.gotDraft.Items[0].Quantity; got != 5 {
		t.Fatalf("expected quantity 5, got %d", got)
	}
}

func TestAddItemDropsNonNumericRole(t *testing.T) {
	pricing := &stubPricing{outcome: acceptedOutcome(nil)}
	svc, _ := newTestService(t, pricing)

	input := classInput("c1")
	input.RoleID = "undefined"
	if _, err := svc.AddItem(context.Background(), "s1", input); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if pricing.gotDraft.Items[0].RoleID != nil {
		t.Fatalf("expected junk role dropped, got %v", *pricing.gotDraft.Items[0].RoleID)
	}

	input = classInput("c2")
	input.RoleID = " 3 "
	if _, err := svc.AddItem(context.Background(), "s1", input); err != nil {
		t.Fatalf("add item: %v", err)
	}
	items := pricing.gotDraft.Items
	if roleID := items[len(items)-1].RoleID; roleID == nil || *roleID != 3 {
		t.Fatalf("expected role 3, got %v", roleID)
	}
}

func TestApplyVoucherOnEmptyCartKeepsCodeLocally(t *testing.T) {
	pricing := &stubPricing{outcome: acceptedOutcome(nil)}
	svc, store := newTestService(t, pricing)

	view, err := svc.ApplyVoucher(context.Background(), "s1", "SPRING")
	if err != nil {
		t.Fatalf("apply voucher: %v", err)
	}

	if pricing.calls != 0 {
		t.Fatalf("expected no submit for empty cart, got %d", pricing.calls)
	}
	if len(view.Alerts) != 1 || view.Alerts[0].Level != enums.AlertLevelInfo {
		t.Fatalf("expected info alert, got %+v", view.Alerts)
	}

	state, err := store.Load(context.Background(), "s1")
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.Draft.Voucher.VoucherID != "SPRING" {
		t.Fatalf("expected code kept, got %q", state.Draft.Voucher.VoucherID)
	}
}

func TestApplyVoucherRejectsSecondVoucherLocally(t *testing.T) {
	pricing := &stubPricing{outcome: acceptedOutcome(nil)}
	svc, store := newTestService(t, pricing)

	existing := NewDraft(true)
	existing.Voucher.VoucherID = "SPRING"
	existing.Items = []LineItem{{ChoiceID: "c1", Type: enums.ItemTypeEventRegistration}}
	if err := store.Save(context.Background(), "s1", &SessionState{Draft: existing}); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	view, err := svc.ApplyVoucher(context.Background(), "s1", "SUMMER")
	if err != nil {
		t.Fatalf("apply voucher: %v", err)
	}

	if pricing.calls != 0 {
		t.Fatalf("expected no submit, got %d", pricing.calls)
	}
	if len(view.Alerts) != 1 || view.Alerts[0].Message != "only one voucher" {
		t.Fatalf("expected voucher rejection alert, got %+v", view.Alerts)
	}

	state, err := store.Load(context.Background(), "s1")
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.Draft.Voucher.VoucherID != "SPRING" {
		t.Fatalf("expected existing code kept, got %q", state.Draft.Voucher.VoucherID)
	}
}

func TestRemoveVoucherSubmitsEmptyVoucher(t *testing.T) {
	amount := decimal.NewFromInt(5)
	pricing := &stubPricing{outcome: acceptedOutcome(nil)}
	svc, store := newTestService(t, pricing)

	existing := NewDraft(true)
	existing.Items = []LineItem{{ChoiceID: "c1", Type: enums.ItemTypeEventRegistration}}
	existing.Voucher = Voucher{
		VoucherID:     "SPRING",
		VoucherName:   "Spring special",
		VoucherAmount: &amount,
		BeforeTax:     true,
	}
	if err := store.Save(context.Background(), "s1", &SessionState{Draft: existing}); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	if _, err := svc.RemoveVoucher(context.Background(), "s1"); err != nil {
		t.Fatalf("remove voucher: %v", err)
	}

	if pricing.calls != 1 {
		t.Fatalf("expected 1 submit, got %d", pricing.calls)
	}
	got := pricing.gotDraft.Voucher
	if got.VoucherID != "" || got.VoucherName != "" || got.VoucherAmount != nil || got.BeforeTax || len(got.Errors) != 0 {
		t.Fatalf("expected empty voucher submitted, got %+v", got)
	}
	if len(pricing.gotDraft.Items) != 1 {
		t.Fatalf("expected items kept, got %+v", pricing.gotDraft.Items)
	}
}

func TestSubmitResetsDraftWhenInvoiceExpired(t *testing.T) {
	pricing := &stubPricing{outcome: &SubmitOutcome{
		Status: "failure",
		Errors: []SubmitError{{Code: ErrorCodeExpired, Message: "this order has expired"}},
	}}
	svc, store := newTestService(t, pricing)

	existing := NewDraft(true)
	existing.ItemCount = 2
	existing.Items = []LineItem{
		{ChoiceID: "c1", Type: enums.ItemTypeEventRegistration},
		{ChoiceID: "c2", Type: enums.ItemTypeEventRegistration},
	}
	if err := store.Save(context.Background(), "s1", &SessionState{Draft: existing}); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	view, err := svc.RemoveItem(context.Background(), "s1", "c1")
	if err != nil {
		t.Fatalf("remove item: %v", err)
	}

	if len(view.Alerts) != 1 || view.Alerts[0].Message != "this order has expired" {
		t.Fatalf("expected expiry alert, got %+v", view.Alerts)
	}
	if len(view.Lines) != 0 || view.ItemCount != 0 {
		t.Fatalf("expected fresh cart after expiry, got %+v", view)
	}

	state, err := store.Load(context.Background(), "s1")
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.Draft.ID != nil || len(state.Draft.Items) != 0 {
		t.Fatalf("expected reinitialized draft, got %+v", state.Draft)
	}
}

func TestSubmitRollsBackOnRejection(t *testing.T) {
	pricing := &stubPricing{outcome: &SubmitOutcome{
		Status: "failure",
		Errors: []SubmitError{{Code: "invalid_item", Message: "that class is full"}},
	}}
	svc, store := newTestService(t, pricing)

	if _, err := svc.AddItem(context.Background(), "s1", classInput("c1")); err != nil {
		t.Fatalf("add item: %v", err)
	}

	state, err := store.Load(context.Background(), "s1")
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if len(state.Draft.Items) != 0 {
		t.Fatalf("expected rejected mutation rolled back, got %+v", state.Draft.Items)
	}
	if len(state.Alerts) != 1 || state.Alerts[0].Message != "that class is full" {
		t.Fatalf("expected rejection alert, got %+v", state.Alerts)
	}
}

func TestFinalizeRedirectClearsSession(t *testing.T) {
	pricing := &stubPricing{outcome: &SubmitOutcome{
		Status:   StatusSuccess,
		Redirect: "/payment/abc123/",
	}}
	svc, store := newTestService(t, pricing)

	existing := NewDraft(true)
	existing.ItemCount = 1
	existing.Items = []LineItem{{ChoiceID: "c1", Type: enums.ItemTypeEventRegistration}}
	if err := store.Save(context.Background(), "s1", &SessionState{Draft: existing}); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	view, err := svc.Finalize(context.Background(), "s1")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if !pricing.gotFinalize {
		t.Fatal("expected finalize flag on submit")
	}
	if view.Redirect != "/payment/abc123/" {
		t.Fatalf("expected redirect, got %q", view.Redirect)
	}

	if _, err := store.Load(context.Background(), "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected session cleared, got %v", err)
	}
}

func TestFinalizeReleasesSessionLock(t *testing.T) {
	pricing := &stubPricing{outcome: &SubmitOutcome{
		Status:   StatusSuccess,
		Redirect: "/payment/abc123/",
	}}
	svc, store := newTestService(t, pricing)

	existing := NewDraft(true)
	existing.ItemCount = 1
	existing.Items = []LineItem{{ChoiceID: "c1", Type: enums.ItemTypeEventRegistration}}
	if err := store.Save(context.Background(), "s1", &SessionState{Draft: existing}); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	if _, err := svc.Finalize(context.Background(), "s1"); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	locks := 0
	svc.(*service).locks.Range(func(_, _ any) bool {
		locks++
		return true
	})
	if locks != 0 {
		t.Fatalf("expected lock entry dropped with the session, got %d", locks)
	}
}

func TestFinalizeTransportFailureKeepsCart(t *testing.T) {
	pricing := &stubPricing{err: errors.New("timeout")}
	svc, store := newTestService(t, pricing)

	existing := NewDraft(true)
	existing.ItemCount = 1
	existing.Items = []LineItem{{ChoiceID: "c1", Type: enums.ItemTypeEventRegistration}}
	if err := store.Save(context.Background(), "s1", &SessionState{Draft: existing}); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	view, err := svc.Finalize(context.Background(), "s1")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if view.Redirect != "" {
		t.Fatalf("expected no redirect, got %q", view.Redirect)
	}
	if len(view.Lines) != 1 {
		t.Fatalf("expected cart intact, got %d lines", len(view.Lines))
	}

	state, err := store.Load(context.Background(), "s1")
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if len(state.Draft.Items) != 1 {
		t.Fatalf("expected stored cart intact, got %+v", state.Draft.Items)
	}
}

func TestVoucherErrorsBecomeAlertsAndCodeCleared(t *testing.T) {
	amount := decimal.Zero
	invoice := NewDraft(true)
	invoice.ItemCount = 1
	invoice.Items = []LineItem{{ChoiceID: "c1", Type: enums.ItemTypeEventRegistration}}
	invoice.Voucher = Voucher{
		VoucherID:     "BOGUS",
		VoucherAmount: &amount,
		Errors:        []SubmitError{{Code: "invalid_voucher", Message: "voucher not recognized"}},
	}

	pricing := &stubPricing{outcome: acceptedOutcome(invoice)}
	svc, store := newTestService(t, pricing)

	existing := NewDraft(true)
	existing.Items = []LineItem{{ChoiceID: "c1", Type: enums.ItemTypeEventRegistration}}
	if err := store.Save(context.Background(), "s1", &SessionState{Draft: existing}); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	view, err := svc.ApplyVoucher(context.Background(), "s1", "BOGUS")
	if err != nil {
		t.Fatalf("apply voucher: %v", err)
	}

	if len(view.Alerts) != 1 || view.Alerts[0].Message != "voucher not recognized" {
		t.Fatalf("expected voucher alert, got %+v", view.Alerts)
	}

	state, err := store.Load(context.Background(), "s1")
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.Draft.Voucher.VoucherID != "" || len(state.Draft.Voucher.Errors) != 0 {
		t.Fatalf("expected rejected code cleared, got %+v", state.Draft.Voucher)
	}
}

func TestEmptyCartRollsBackToPreviousCartOnFailure(t *testing.T) {
	pricing := &stubPricing{err: errors.New("connection reset")}
	svc, store := newTestService(t, pricing)

	existing := NewDraft(true)
	existing.ItemCount = 1
	existing.Items = []LineItem{{ChoiceID: "c1", Type: enums.ItemTypeEventRegistration}}
	if err := store.Save(context.Background(), "s1", &SessionState{Draft: existing}); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	view, err := svc.EmptyCart(context.Background(), "s1")
	if err != nil {
		t.Fatalf("empty cart: %v", err)
	}

	if pricing.calls != 1 {
		t.Fatalf("expected reset submitted, got %d calls", pricing.calls)
	}
	if len(pricing.gotDraft.Items) != 0 {
		t.Fatalf("expected fresh draft submitted, got %+v", pricing.gotDraft.Items)
	}
	if len(view.Lines) != 1 {
		t.Fatalf("expected previous cart restored, got %d lines", len(view.Lines))
	}
}

func TestCartDoesNotSubmit(t *testing.T) {
	pricing := &stubPricing{outcome: acceptedOutcome(nil)}
	svc, _ := newTestService(t, pricing)

	view, err := svc.Cart(context.Background(), "s1")
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	if pricing.calls != 0 {
		t.Fatalf("expected no submit for read, got %d", pricing.calls)
	}
	if view.ShowSubmit {
		t.Fatal("expected submit hidden for empty cart")
	}
}

func TestDismissAlertsClearsPendingAlerts(t *testing.T) {
	pricing := &stubPricing{err: errors.New("down")}
	svc, _ := newTestService(t, pricing)

	if _, err := svc.AddItem(context.Background(), "s1", classInput("c1")); err != nil {
		t.Fatalf("add item: %v", err)
	}

	view, err := svc.DismissAlerts(context.Background(), "s1")
	if err != nil {
		t.Fatalf("dismiss alerts: %v", err)
	}
	if len(view.Alerts) != 0 {
		t.Fatalf("expected alerts cleared, got %+v", view.Alerts)
	}
}
