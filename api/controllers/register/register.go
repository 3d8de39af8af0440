package register

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openstudio/register-gateway/api/middleware"
	"github.com/openstudio/register-gateway/api/responses"
	"github.com/openstudio/register-gateway/api/validators"
	registersvc "github.com/openstudio/register-gateway/internal/register"
	pkgerrors "github.com/openstudio/register-gateway/pkg/errors"
	"github.com/openstudio/register-gateway/pkg/logger"
)

// Cart returns the current cart projection without mutating the draft.
func Cart(svc registersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(svc, logg, w, r)
		if !ok {
			return
		}

		view, err := svc.Cart(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// AddItem adds a class registration or store item to the cart and
// reprices the draft against the school server.
func AddItem(svc registersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(svc, logg, w, r)
		if !ok {
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.AddItem(r.Context(), sessionID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// RemoveItem drops every cart line carrying the given choice identifier.
func RemoveItem(svc registersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(svc, logg, w, r)
		if !ok {
			return
		}

		choiceID := chi.URLParam(r, "choiceID")
		if choiceID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "choiceId is required"))
			return
		}

		view, err := svc.RemoveItem(r.Context(), sessionID, choiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// EmptyCart resets the draft to a blank cart and confirms with the server.
func EmptyCart(svc registersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(svc, logg, w, r)
		if !ok {
			return
		}

		view, err := svc.EmptyCart(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// ApplyVoucher attaches a voucher code to the cart.
func ApplyVoucher(svc registersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(svc, logg, w, r)
		if !ok {
			return
		}

		var payload applyVoucherRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.ApplyVoucher(r.Context(), sessionID, payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// RemoveVoucher detaches the current voucher from the cart.
func RemoveVoucher(svc registersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(svc, logg, w, r)
		if !ok {
			return
		}

		view, err := svc.RemoveVoucher(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// Finalize submits the cart for payment. On success the view carries the
// redirect URL for the payment page.
func Finalize(svc registersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(svc, logg, w, r)
		if !ok {
			return
		}

		view, err := svc.Finalize(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// DismissAlerts clears the session's pending alert banners.
func DismissAlerts(svc registersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(svc, logg, w, r)
		if !ok {
			return
		}

		view, err := svc.DismissAlerts(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

func requireSession(svc registersvc.Service, logg *logger.Logger, w http.ResponseWriter, r *http.Request) (string, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
		return "", false
	}
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "register session missing"))
		return "", false
	}
	return sessionID, true
}
