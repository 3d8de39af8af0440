package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openstudio/register-gateway/api/controllers"
	registercontrollers "github.com/openstudio/register-gateway/api/controllers/register"
	"github.com/openstudio/register-gateway/api/middleware"
	checkinsvc "github.com/openstudio/register-gateway/internal/checkin"
	lookupsvc "github.com/openstudio/register-gateway/internal/lookup"
	registersvc "github.com/openstudio/register-gateway/internal/register"
	"github.com/openstudio/register-gateway/pkg/config"
	"github.com/openstudio/register-gateway/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gatherer prometheus.Gatherer,
	readiness map[string]controllers.Pinger,
	registerService registersvc.Service,
	lookupService lookupsvc.Service,
	checkinService checkinsvc.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/register", func(r chi.Router) {
		r.Use(middleware.Session(logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", registercontrollers.Cart(registerService, logg))
			r.Post("/items", registercontrollers.AddItem(registerService, logg))
			r.Delete("/items/{choiceID}", registercontrollers.RemoveItem(registerService, logg))
			r.Post("/empty", registercontrollers.EmptyCart(registerService, logg))
			r.Post("/voucher", registercontrollers.ApplyVoucher(registerService, logg))
			r.Delete("/voucher", registercontrollers.RemoveVoucher(registerService, logg))
			r.Post("/finalize", registercontrollers.Finalize(registerService, logg))
			r.Post("/alerts/dismiss", registercontrollers.DismissAlerts(registerService, logg))
		})

		r.Post("/customers/lookup", controllers.CustomerLookup(lookupService, logg))
		r.Post("/guests/lookup", controllers.GuestLookup(lookupService, logg))
		r.Post("/checkin", controllers.CheckInUpdate(checkinService, logg))
	})

	return r
}
