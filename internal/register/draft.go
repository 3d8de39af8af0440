package register

import (
	"github.com/openstudio/register-gateway/pkg/enums"
	"github.com/shopspring/decimal"
)

func init() {
	// The school server speaks plain JSON numbers for monetary amounts.
	decimal.MarshalJSONWithoutQuotes = true
}

// Draft is the optimistic, not-yet-authoritative cart/invoice state held for
// one register session. Totals, discounts, vouchers, and add-ons are never
// computed here; they carry whatever the last authoritative server response
// contained.
type Draft struct {
	ID                 *string         `json:"id"`
	PayAtDoor          bool            `json:"payAtDoor"`
	GrossTotal         decimal.Decimal `json:"grossTotal"`
	Total              decimal.Decimal `json:"total"`
	Taxes              decimal.Decimal `json:"taxes"`
	Adjustments        decimal.Decimal `json:"adjustments"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
	BuyerPaysSalesTax  bool            `json:"buyerPaysSalesTax"`
	Student            bool            `json:"student,omitempty"`
	ItemCount          int             `json:"itemCount"`
	Items              []LineItem      `json:"items"`
	Discounts          []Discount      `json:"discounts"`
	Voucher            Voucher         `json:"voucher"`
	AddonItems         []string        `json:"addonItems"`
}

// LineItem is one purchasable unit in the cart. Correlation fields are
// kind-specific: event registrations carry event ids, merch items carry
// variant/order-item ids. ChoiceID ties the item back to the register
// control that added it and is the key for quantity merges and removal.
type LineItem struct {
	Type        enums.ItemType  `json:"type"`
	ChoiceID    string          `json:"choiceId"`
	Description string          `json:"description"`
	GrossTotal  decimal.Decimal `json:"grossTotal"`

	Quantity       int  `json:"quantity,omitempty"`
	UpdateQuantity bool `json:"updateQuantity,omitempty"`

	EventID             *int   `json:"eventId,omitempty"`
	EventRegistrationID *int   `json:"eventRegistrationId,omitempty"`
	RoleID              *int   `json:"roleId,omitempty"`
	RoleName            string `json:"roleName,omitempty"`
	DropIn              bool   `json:"dropIn,omitempty"`

	VariantID *int `json:"variantId,omitempty"`
	ItemID    *int `json:"itemId,omitempty"`
}

// Discount is a server-supplied price reduction. Read-only on this side.
type Discount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"discount_amount"`
}

// Voucher is the single promotional code slot on the draft. The server
// validates the code and fills in name/amount; Errors carries structured
// rejections for an invalid code.
type Voucher struct {
	VoucherID     string           `json:"voucherId,omitempty"`
	VoucherName   string           `json:"voucherName,omitempty"`
	VoucherAmount *decimal.Decimal `json:"voucherAmount,omitempty"`
	BeforeTax     bool             `json:"beforeTax,omitempty"`
	Errors        []SubmitError    `json:"errors,omitempty"`
}

// SubmitError is one structured rejection from the school server.
type SubmitError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error code the server uses when the underlying invoice/registration has
// lapsed and the draft must be discarded rather than rolled back.
const ErrorCodeExpired = "expired"

// NewDraft returns a freshly initialized empty draft.
func NewDraft(payAtDoor bool) *Draft {
	return &Draft{
		PayAtDoor:         payAtDoor,
		BuyerPaysSalesTax: true,
		Items:             []LineItem{},
		Discounts:         []Discount{},
		Voucher:           Voucher{},
		AddonItems:        []string{},
	}
}

// Backfill ensures the optional collections an authoritative response may
// omit are present and empty, so rendering never dereferences an absent
// field.
func (d *Draft) Backfill() {
	if d.Items == nil {
		d.Items = []LineItem{}
	}
	if d.Discounts == nil {
		d.Discounts = []Discount{}
	}
	if d.AddonItems == nil {
		d.AddonItems = []string{}
	}
}

// findByChoice returns the index of the first line item with the given
// choice id, or -1.
func (d *Draft) findByChoice(choiceID string) int {
	for i := range d.Items {
		if d.Items[i].ChoiceID == choiceID {
			return i
		}
	}
	return -1
}

// removeByChoice deletes every line item matching the choice id. The add
// path normally prevents duplicates for quantity-adjustable kinds, but
// removal sweeps all matches anyway.
func (d *Draft) removeByChoice(choiceID string) int {
	kept := d.Items[:0]
	removed := 0
	for _, item := range d.Items {
		if item.ChoiceID == choiceID {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	d.Items = kept
	return removed
}

// HasVoucher reports whether a non-empty voucher code is attached.
func (d *Draft) HasVoucher() bool {
	return d.Voucher.VoucherID != ""
}
