package checkin

import (
	"context"
	"fmt"

	"github.com/openstudio/register-gateway/pkg/enums"
	pkgerrors "github.com/openstudio/register-gateway/pkg/errors"
)

// UpdateInput marks registrations or named guests as checked in (or not)
// for one event occurrence.
type UpdateInput struct {
	EventID       int                `json:"event_id"`
	CheckinType   enums.CheckinType  `json:"checkin_type"`
	OccurrenceID  int                `json:"occurrence_id"`
	Registrations []RegistrationMark `json:"registrations,omitempty"`
	Names         []NameMark         `json:"names,omitempty"`
}

// RegistrationMark toggles check-in state for one registration.
type RegistrationMark struct {
	ID        string `json:"id"`
	Cancelled bool   `json:"cancelled"`
}

// NameMark toggles check-in state for one named guest.
type NameMark struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Cancelled bool   `json:"cancelled"`
}

// Caller is the slice of the school-server client this service needs.
type Caller interface {
	CheckIn(ctx context.Context, input UpdateInput) error
}

// Service validates and forwards check-in updates. The only client-side
// effect of the result is re-enabling the control that issued it.
type Service interface {
	Update(ctx context.Context, input UpdateInput) error
}

type service struct {
	caller Caller
}

func NewService(caller Caller) (Service, error) {
	if caller == nil {
		return nil, fmt.Errorf("upstream caller required")
	}
	return &service{caller: caller}, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) error {
	if input.EventID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}
	if !input.CheckinType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid checkin type")
	}
	if len(input.Registrations) == 0 && len(input.Names) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one registration or guest name is required")
	}
	if len(input.Registrations) > 0 && len(input.Names) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "registrations and guest names are mutually exclusive")
	}
	return s.caller.CheckIn(ctx, input)
}
