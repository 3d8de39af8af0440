package register

import (
	"github.com/shopspring/decimal"

	registersvc "github.com/openstudio/register-gateway/internal/register"
	"github.com/openstudio/register-gateway/pkg/enums"
	pkgerrors "github.com/openstudio/register-gateway/pkg/errors"
)

type addItemRequest struct {
	Type        string `json:"type" validate:"required,oneof=eventRegistration merchItem"`
	ChoiceID    string `json:"choiceId" validate:"required"`
	Description string `json:"description" validate:"required"`
	Price       string `json:"price" validate:"required"`

	EventID   *int   `json:"eventId,omitempty"`
	VariantID *int   `json:"variantId,omitempty"`
	RoleID    string `json:"roleId,omitempty"`
	RoleName  string `json:"roleName,omitempty"`
	DropIn    bool   `json:"dropIn,omitempty"`

	VoucherID      string `json:"voucherId,omitempty"`
	Student        bool   `json:"student,omitempty"`
	Quantity       int    `json:"quantity,omitempty" validate:"omitempty,min=1"`
	UpdateQuantity bool   `json:"updateQuantity,omitempty"`
}

func (r addItemRequest) toInput() (registersvc.AddItemInput, error) {
	itemType, err := enums.ParseItemType(r.Type)
	if err != nil {
		return registersvc.AddItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item type")
	}
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return registersvc.AddItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	if price.IsNegative() {
		return registersvc.AddItemInput{}, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if itemType == enums.ItemTypeEventRegistration && r.EventID == nil {
		return registersvc.AddItemInput{}, pkgerrors.New(pkgerrors.CodeValidation, "eventId is required for event registrations")
	}
	if itemType == enums.ItemTypeMerchItem && r.VariantID == nil {
		return registersvc.AddItemInput{}, pkgerrors.New(pkgerrors.CodeValidation, "variantId is required for store items")
	}

	return registersvc.AddItemInput{
		Type:           itemType,
		ChoiceID:       r.ChoiceID,
		Description:    r.Description,
		GrossTotal:     price,
		EventID:        r.EventID,
		VariantID:      r.VariantID,
		RoleID:         r.RoleID,
		RoleName:       r.RoleName,
		DropIn:         r.DropIn,
		VoucherID:      r.VoucherID,
		Student:        r.Student,
		Quantity:       r.Quantity,
		UpdateQuantity: r.UpdateQuantity,
	}, nil
}

type applyVoucherRequest struct {
	Code string `json:"code" validate:"required"`
}
