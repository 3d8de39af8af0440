package lookup

import (
	"context"
	"fmt"

	pkgerrors "github.com/openstudio/register-gateway/pkg/errors"
)

// Caller is the slice of the school-server client this service needs.
type Caller interface {
	CustomerLookup(ctx context.Context, input CustomerInput) ([]CustomerRow, error)
	GuestLookup(ctx context.Context, input GuestInput) (*GuestResult, error)
}

// Service proxies person lookups to the school server. The gateway owns no
// registration data; it only validates the request and passes rows through.
type Service interface {
	Customer(ctx context.Context, input CustomerInput) ([]CustomerRow, error)
	Guest(ctx context.Context, input GuestInput) (*GuestResult, error)
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

func (s *service) Customer(ctx context.Context, input CustomerInput) ([]CustomerRow, error) {
	if input.ID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if input.Date == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "register date is required")
	}
	rows, err := s.caller.CustomerLookup(ctx, input)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []CustomerRow{}
	}
	return rows, nil
}

func (s *service) Guest(ctx context.Context, input GuestInput) (*GuestResult, error) {
	if input.ID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest id is required")
	}
	if input.Date == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "register date is required")
	}
	if !input.CheckinType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid checkin type")
	}
	result, err := s.caller.GuestLookup(ctx, input)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = &GuestResult{Events: []GuestRow{}}
	}
	if result.Events == nil {
		result.Events = []GuestRow{}
	}
	return result, nil
}
