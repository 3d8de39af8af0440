package controllers

import (
	"net/http"

	"github.com/openstudio/register-gateway/api/responses"
	"github.com/openstudio/register-gateway/api/validators"
	lookupsvc "github.com/openstudio/register-gateway/internal/lookup"
	"github.com/openstudio/register-gateway/pkg/enums"
	pkgerrors "github.com/openstudio/register-gateway/pkg/errors"
	"github.com/openstudio/register-gateway/pkg/logger"
)

// CustomerLookup returns the per-event registration rows for a customer at
// the door.
func CustomerLookup(svc lookupsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lookup service unavailable"))
			return
		}

		var payload customerLookupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.Customer(r.Context(), lookupsvc.CustomerInput{
			ID:        payload.ID,
			GuestType: payload.GuestType,
			Date:      payload.Date,
			EventList: payload.EventList,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

// GuestLookup returns the guest-list rows for a non-customer guest.
func GuestLookup(svc lookupsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lookup service unavailable"))
			return
		}

		var payload guestLookupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Guest(r.Context(), lookupsvc.GuestInput{
			ID:          payload.ID,
			GuestListID: payload.GuestListID,
			ModelType:   payload.ModelType,
			Date:        payload.Date,
			EventList:   payload.EventList,
			CheckinType: enums.CheckinType(payload.CheckinType),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type customerLookupRequest struct {
	ID        int    `json:"id" validate:"required,min=1"`
	GuestType string `json:"guestType,omitempty"`
	Date      string `json:"date" validate:"required"`
	EventList []int  `json:"eventList" validate:"required,min=1"`
}

type guestLookupRequest struct {
	ID          int    `json:"id" validate:"required,min=1"`
	GuestListID int    `json:"guestListId"`
	ModelType   string `json:"modelType"`
	Date        string `json:"date" validate:"required"`
	EventList   []int  `json:"eventList" validate:"required,min=1"`
	CheckinType string `json:"checkinType" validate:"required,oneof=O E"`
}
