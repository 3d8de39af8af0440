package register

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/openstudio/register-gateway/pkg/config"
	"github.com/openstudio/register-gateway/pkg/enums"
	pkgerrors "github.com/openstudio/register-gateway/pkg/errors"
	"github.com/openstudio/register-gateway/pkg/logger"
	"github.com/openstudio/register-gateway/pkg/metrics"
	"github.com/shopspring/decimal"
)

// StatusSuccess is the status value the school server returns for accepted
// submissions.
const StatusSuccess = "success"

// PricingClient submits the full draft to the school server and reports the
// authoritative recomputation or the structured rejections. A transport
// failure is returned as an error; an application-level rejection is a
// non-success outcome.
type PricingClient interface {
	SubmitDraft(ctx context.Context, draft *Draft, finalize bool) (*SubmitOutcome, error)
}

// SubmitOutcome is the parsed pricing endpoint response.
type SubmitOutcome struct {
	Status   string
	Redirect string
	Invoice  *Draft
	Errors   []SubmitError
}

// Succeeded reports whether the server accepted the submission.
func (o *SubmitOutcome) Succeeded() bool {
	return o != nil && o.Status == StatusSuccess
}

// AddItemInput is the descriptor carried by a register choice control.
type AddItemInput struct {
	Type        enums.ItemType
	ChoiceID    string
	Description string
	GrossTotal  decimal.Decimal

	EventID   *int
	VariantID *int
	RoleID    string
	RoleName  string
	DropIn    bool

	VoucherID      string
	Student        bool
	Quantity       int
	UpdateQuantity bool
}

// Service applies user actions to the session draft and keeps it
// synchronized with the school server. Every mutating operation follows the
// same pattern: snapshot the draft, mutate it in place, submit, and either
// adopt the authoritative response or roll back.
type Service interface {
	Cart(ctx context.Context, sessionID string) (*CartView, error)
	AddItem(ctx context.Context, sessionID string, input AddItemInput) (*CartView, error)
	RemoveItem(ctx context.Context, sessionID, choiceID string) (*CartView, error)
	EmptyCart(ctx context.Context, sessionID string) (*CartView, error)
	ApplyVoucher(ctx context.Context, sessionID, code string) (*CartView, error)
	RemoveVoucher(ctx context.Context, sessionID string) (*CartView, error)
	Finalize(ctx context.Context, sessionID string) (*CartView, error)
	DismissAlerts(ctx context.Context, sessionID string) (*CartView, error)
}

type service struct {
	store   DraftStore
	pricing PricingClient
	cfg     config.RegisterConfig
	logg    *logger.Logger
	metrics *metrics.RegisterMetrics

	locks sync.Map // sessionID -> *sync.Mutex
}

// NewService builds the register cart engine.
func NewService(store DraftStore, pricing PricingClient, cfg config.RegisterConfig, logg *logger.Logger, m *metrics.RegisterMetrics) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("draft store required")
	}
	if pricing == nil {
		return nil, fmt.Errorf("pricing client required")
	}
	return &service{
		store:   store,
		pricing: pricing,
		cfg:     cfg,
		logg:    logg,
		metrics: m,
	}, nil
}

// lock serializes operations per session. Snapshots are therefore captured
// at mutation time with at most one submit in flight per session, which
// closes the overlapping-submit race the browser implementation tolerated.
func (s *service) lock(sessionID string) func() {
	v, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *service) Cart(ctx context.Context, sessionID string) (*CartView, error) {
	defer s.lock(sessionID)()
	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.saveState(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return buildView(state, s.cfg), nil
}

func (s *service) AddItem(ctx context.Context, sessionID string, input AddItemInput) (*CartView, error) {
	defer s.lock(sessionID)()
	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	draft := state.Draft

	// A choice control may carry a voucher code alongside the item. A
	// second distinct code is rejected locally before any network call.
	if input.VoucherID != "" && draft.HasVoucher() && draft.Voucher.VoucherID != input.VoucherID {
		s.metrics.IncLocalRejection("multiple_vouchers")
		state.Alerts = append(state.Alerts, newAlert(enums.AlertLevelDanger, s.cfg.MultipleVoucherMessage))
		if err := s.saveState(ctx, sessionID, state); err != nil {
			return nil, err
		}
		return buildView(state, s.cfg), nil
	}

	snapshot := draft.Clone()

	if input.VoucherID != "" {
		draft.Voucher.VoucherID = input.VoucherID
	}
	// The student attribute applies to the whole registration, not to one
	// particular item.
	if input.Student {
		draft.Student = true
	}

	item := LineItem{
		Type:           input.Type,
		ChoiceID:       input.ChoiceID,
		Description:    input.Description,
		GrossTotal:     input.GrossTotal,
		RoleName:       input.RoleName,
		DropIn:         input.DropIn,
		Quantity:       input.Quantity,
		UpdateQuantity: input.UpdateQuantity,
	}
	switch input.Type {
	case enums.ItemTypeEventRegistration:
		item.EventID = input.EventID
		// Choice controls without an associated role submit junk in the
		// role field; anything that is not an integer means "no role".
		if roleID, err := strconv.Atoi(strings.TrimSpace(input.RoleID)); err == nil {
			item.RoleID = &roleID
		}
	case enums.ItemTypeMerchItem:
		item.VariantID = input.VariantID
	}

	if prior := draft.findByChoice(input.ChoiceID); input.UpdateQuantity && input.Quantity != 0 && prior != -1 {
		draft.Items[prior].Quantity += input.Quantity
	} else {
		draft.Items = append(draft.Items, item)
	}

	return s.submit(ctx, sessionID, state, snapshot, submitOptions{clearAlerts: true})
}

func (s *service) RemoveItem(ctx context.Context, sessionID, choiceID string) (*CartView, error) {
	defer s.lock(sessionID)()
	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	snapshot := state.Draft.Clone()
	state.Draft.removeByChoice(choiceID)
	return s.submit(ctx, sessionID, state, snapshot, submitOptions{})
}

func (s *service) EmptyCart(ctx context.Context, sessionID string) (*CartView, error) {
	defer s.lock(sessionID)()
	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	// The reinitialized draft is what gets submitted; the rollback target
	// is the pre-reset draft so a failure restores the previous cart.
	snapshot := state.Draft.Clone()
	state.Draft = NewDraft(s.cfg.PayAtDoor)
	return s.submit(ctx, sessionID, state, snapshot, submitOptions{clearAlerts: true})
}

func (s *service) ApplyVoucher(ctx context.Context, sessionID, code string) (*CartView, error) {
	defer s.lock(sessionID)()
	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	draft := state.Draft

	if code != "" && draft.HasVoucher() && draft.Voucher.VoucherID != code {
		s.metrics.IncLocalRejection("multiple_vouchers")
		state.Alerts = append(state.Alerts, newAlert(enums.AlertLevelDanger, s.cfg.MultipleVoucherMessage))
		if err := s.saveState(ctx, sessionID, state); err != nil {
			return nil, err
		}
		return buildView(state, s.cfg), nil
	}

	// Nothing to apply a voucher to yet: keep the code locally and tell
	// the operator, without a network round trip.
	if len(draft.Items) == 0 {
		draft.Voucher.VoucherID = code
		s.metrics.IncLocalRejection("empty_cart_voucher")
		state.Alerts = append(state.Alerts, newAlert(enums.AlertLevelInfo, s.cfg.EmptyCartVoucherMessage))
		if err := s.saveState(ctx, sessionID, state); err != nil {
			return nil, err
		}
		return buildView(state, s.cfg), nil
	}

	snapshot := draft.Clone()
	draft.Voucher.VoucherID = code
	return s.submit(ctx, sessionID, state, snapshot, submitOptions{})
}

func (s *service) RemoveVoucher(ctx context.Context, sessionID string) (*CartView, error) {
	defer s.lock(sessionID)()
	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	snapshot := state.Draft.Clone()
	state.Draft.Voucher = Voucher{}
	return s.submit(ctx, sessionID, state, snapshot, submitOptions{})
}

func (s *service) Finalize(ctx context.Context, sessionID string) (*CartView, error) {
	defer s.lock(sessionID)()
	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	snapshot := state.Draft.Clone()
	return s.submit(ctx, sessionID, state, snapshot, submitOptions{finalize: true})
}

func (s *service) DismissAlerts(ctx context.Context, sessionID string) (*CartView, error) {
	defer s.lock(sessionID)()
	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	state.Alerts = nil
	if err := s.saveState(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return buildView(state, s.cfg), nil
}

type submitOptions struct {
	finalize    bool
	clearAlerts bool
}

// submit sends the mutated draft to the pricing endpoint and reconciles the
// session with the outcome. Exactly one view is produced per submission,
// whichever branch is taken; the finalize-and-redirect branch produces a
// view carrying only the redirect target since the terminal is leaving the
// cart page.
func (s *service) submit(ctx context.Context, sessionID string, state *SessionState, snapshot *Draft, opts submitOptions) (*CartView, error) {
	outcome, err := s.pricing.SubmitDraft(ctx, state.Draft, opts.finalize)
	if err != nil {
		// Transport failure: the server never saw a consistent picture,
		// so restore the pre-mutation snapshot.
		s.metrics.IncSubmit(metrics.OutcomeRolledBack)
		if s.logg != nil {
			s.logg.Error(ctx, "register.submit.transport_failure", err)
		}
		state.Draft.Restore(snapshot)
		state.Alerts = append(state.Alerts, newAlert(enums.AlertLevelDanger, s.cfg.TransportErrorMessage))
		if err := s.saveState(ctx, sessionID, state); err != nil {
			return nil, err
		}
		return buildView(state, s.cfg), nil
	}

	if outcome.Succeeded() {
		if opts.finalize && outcome.Redirect != "" {
			s.metrics.IncSubmit(metrics.OutcomeRedirected)
			if err := s.store.Delete(ctx, sessionID); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing finalized session")
			}
			// The session is gone, so its lock entry goes too; a waiter
			// already parked on the old mutex still drains through it.
			s.locks.Delete(sessionID)
			return &CartView{Redirect: outcome.Redirect, Alerts: []Alert{}}, nil
		}

		s.metrics.IncSubmit(metrics.OutcomeApplied)
		invoice := outcome.Invoice
		if invoice == nil {
			invoice = NewDraft(s.cfg.PayAtDoor)
		}
		invoice.Backfill()
		state.Draft = invoice
		if opts.clearAlerts {
			state.Alerts = nil
		}
		s.collectVoucherErrors(state)
		if err := s.saveState(ctx, sessionID, state); err != nil {
			return nil, err
		}
		return buildView(state, s.cfg), nil
	}

	for _, submitErr := range outcome.Errors {
		state.Alerts = append(state.Alerts, newAlert(enums.AlertLevelDanger, submitErr.Message))
	}
	if hasExpired(outcome.Errors) {
		// The server-side invoice is gone; the rollback snapshot refers
		// to state that no longer exists.
		s.metrics.IncSubmit(metrics.OutcomeExpired)
		state.Draft = NewDraft(s.cfg.PayAtDoor)
	} else {
		s.metrics.IncSubmit(metrics.OutcomeRolledBack)
		state.Draft.Restore(snapshot)
	}
	if err := s.saveState(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return buildView(state, s.cfg), nil
}

// collectVoucherErrors surfaces voucher rejections embedded in an accepted
// response and unsets the rejected code so the next submission is clean.
func (s *service) collectVoucherErrors(state *SessionState) {
	if len(state.Draft.Voucher.Errors) == 0 {
		return
	}
	for _, voucherErr := range state.Draft.Voucher.Errors {
		state.Alerts = append(state.Alerts, newAlert(enums.AlertLevelDanger, voucherErr.Message))
	}
	state.Draft.Voucher.VoucherID = ""
	state.Draft.Voucher.Errors = nil
}

func hasExpired(submitErrors []SubmitError) bool {
	for _, submitErr := range submitErrors {
		if submitErr.Code == ErrorCodeExpired {
			return true
		}
	}
	return false
}

func (s *service) loadState(ctx context.Context, sessionID string) (*SessionState, error) {
	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return &SessionState{Draft: NewDraft(s.cfg.PayAtDoor), Alerts: []Alert{}}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading register session")
	}
	if state.Draft == nil {
		state.Draft = NewDraft(s.cfg.PayAtDoor)
	}
	return state, nil
}

func (s *service) saveState(ctx context.Context, sessionID string, state *SessionState) error {
	if err := s.store.Save(ctx, sessionID, state); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving register session")
	}
	return nil
}
