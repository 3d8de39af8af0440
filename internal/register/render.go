package register

import (
	"fmt"

	"github.com/openstudio/register-gateway/pkg/config"
	"github.com/openstudio/register-gateway/pkg/enums"
	"github.com/shopspring/decimal"
)

// CartView is the display representation of a draft: a pure projection of
// the cart plus the pending alert list. It carries no business logic and
// every amount is pre-formatted with the configured currency symbol.
type CartView struct {
	Lines     []LineRow      `json:"lines"`
	Badges    map[string]int `json:"badges,omitempty"`
	Discounts []AmountRow    `json:"discounts"`
	Voucher   *VoucherRow    `json:"voucher,omitempty"`
	Addons    []string       `json:"addons"`
	Tax       *AmountRow     `json:"tax,omitempty"`
	Subtotal  *AmountRow     `json:"subtotal,omitempty"`

	ItemCount  int    `json:"itemCount"`
	Summary    string `json:"summary,omitempty"`
	Total      string `json:"total"`
	ShowSubmit bool   `json:"showSubmit"`

	Alerts   []Alert `json:"alerts"`
	Redirect string  `json:"redirect,omitempty"`
}

// LineRow is one rendered cart row with the correlation attributes the UI
// hangs on the row for removal.
type LineRow struct {
	ChoiceID            string `json:"choiceId"`
	Label               string `json:"label"`
	Price               string `json:"price"`
	EventID             *int   `json:"eventId,omitempty"`
	EventRegistrationID *int   `json:"eventRegistrationId,omitempty"`
	VariantID           *int   `json:"variantId,omitempty"`
	ItemID              *int   `json:"itemId,omitempty"`
}

// AmountRow is a labelled money line (discount, tax, subtotal).
type AmountRow struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

// VoucherRow renders the applied voucher with its removal affordance.
type VoucherRow struct {
	Label     string `json:"label"`
	Code      string `json:"code"`
	Amount    string `json:"amount"`
	BeforeTax bool   `json:"beforeTax"`
	Removable bool   `json:"removable"`
}

func buildView(state *SessionState, cfg config.RegisterConfig) *CartView {
	draft := state.Draft
	view := &CartView{
		Lines:     []LineRow{},
		Discounts: []AmountRow{},
		Addons:    []string{},
		Alerts:    []Alert{},
		ItemCount: draft.ItemCount,
		Total:     formatAmount(cfg, draft.OutstandingBalance),
	}
	if len(state.Alerts) > 0 {
		view.Alerts = append(view.Alerts, state.Alerts...)
	}

	badges := map[string]int{}
	for _, item := range draft.Items {
		label := item.Description
		if item.Type == enums.ItemTypeEventRegistration {
			if item.RoleName != "" {
				label += ": " + item.RoleName
			} else if item.DropIn {
				label += ": " + cfg.DropInLabel
			}
		}
		view.Lines = append(view.Lines, LineRow{
			ChoiceID:            item.ChoiceID,
			Label:               label,
			Price:               formatAmount(cfg, item.GrossTotal),
			EventID:             item.EventID,
			EventRegistrationID: item.EventRegistrationID,
			VariantID:           item.VariantID,
			ItemID:              item.ItemID,
		})
		if item.ChoiceID != "" {
			if item.Quantity > 0 {
				badges[item.ChoiceID] = item.Quantity
			} else {
				badges[item.ChoiceID]++
			}
		}
	}
	if len(badges) > 0 {
		view.Badges = badges
	}

	for _, discount := range draft.Discounts {
		view.Discounts = append(view.Discounts, AmountRow{
			Label:  fmt.Sprintf("%s: %s", cfg.DiscountLabel, discount.Name),
			Amount: "-" + formatAmount(cfg, discount.Amount),
		})
	}

	if draft.Voucher.VoucherAmount != nil && draft.Voucher.VoucherAmount.IsPositive() {
		label := cfg.VoucherLabel
		if draft.Voucher.VoucherName != "" {
			label = fmt.Sprintf("%s: %s (%s)", cfg.VoucherLabel, draft.Voucher.VoucherName, draft.Voucher.VoucherID)
		}
		view.Voucher = &VoucherRow{
			Label:     label,
			Code:      draft.Voucher.VoucherID,
			Amount:    "-" + formatAmount(cfg, *draft.Voucher.VoucherAmount),
			BeforeTax: draft.Voucher.BeforeTax,
			Removable: true,
		}
	}

	view.Addons = append(view.Addons, draft.AddonItems...)

	if draft.BuyerPaysSalesTax && !draft.Taxes.IsZero() {
		view.Tax = &AmountRow{
			Label:  cfg.TaxesLabel,
			Amount: formatAmount(cfg, draft.Taxes),
		}
	}

	// The subtotal line only appears when something sits between the gross
	// total and the final balance.
	if len(view.Discounts) > 0 || view.Voucher != nil || len(view.Addons) > 0 || view.Tax != nil {
		view.Subtotal = &AmountRow{
			Label:  cfg.SubtotalLabel,
			Amount: formatAmount(cfg, draft.GrossTotal),
		}
	}

	if draft.ItemCount > 0 {
		itemWord := cfg.ItemPlural
		if draft.ItemCount == 1 {
			itemWord = cfg.ItemSingular
		}
		view.Summary = fmt.Sprintf("%d %s: %s", draft.ItemCount, itemWord, view.Total)
		view.ShowSubmit = true
	}

	return view
}

func formatAmount(cfg config.RegisterConfig, amount decimal.Decimal) string {
	return cfg.CurrencySymbol + amount.StringFixed(2)
}
