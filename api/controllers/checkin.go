package controllers

import (
	"net/http"

	"github.com/openstudio/register-gateway/api/responses"
	"github.com/openstudio/register-gateway/api/validators"
	checkinsvc "github.com/openstudio/register-gateway/internal/checkin"
	"github.com/openstudio/register-gateway/pkg/enums"
	pkgerrors "github.com/openstudio/register-gateway/pkg/errors"
	"github.com/openstudio/register-gateway/pkg/logger"
)

// CheckInUpdate forwards a batch of check-in toggles to the school server.
func CheckInUpdate(svc checkinsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkin service unavailable"))
			return
		}

		var payload checkInRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := checkinsvc.UpdateInput{
			EventID:      payload.EventID,
			CheckinType:  enums.CheckinType(payload.CheckinType),
			OccurrenceID: payload.OccurrenceID,
		}
		for _, mark := range payload.Registrations {
			input.Registrations = append(input.Registrations, checkinsvc.RegistrationMark{
				ID:        mark.ID,
				Cancelled: mark.Cancelled,
			})
		}
		for _, mark := range payload.Names {
			input.Names = append(input.Names, checkinsvc.NameMark{
				FirstName: mark.FirstName,
				LastName:  mark.LastName,
				Cancelled: mark.Cancelled,
			})
		}

		if err := svc.Update(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "success"})
	}
}

type checkInRequest struct {
	EventID       int                    `json:"event_id" validate:"required,min=1"`
	CheckinType   string                 `json:"checkin_type" validate:"required,oneof=O E"`
	OccurrenceID  int                    `json:"occurrence_id,omitempty"`
	Registrations []registrationMarkBody `json:"registrations,omitempty" validate:"omitempty,dive"`
	Names         []nameMarkBody         `json:"names,omitempty" validate:"omitempty,dive"`
}

type registrationMarkBody struct {
	ID        string `json:"id" validate:"required"`
	Cancelled bool   `json:"cancelled"`
}

type nameMarkBody struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Cancelled bool   `json:"cancelled"`
}
