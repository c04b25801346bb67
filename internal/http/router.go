package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/chinedu-obi/medibill/internal/http/auth"
	"github.com/chinedu-obi/medibill/internal/http/invoice"
	"github.com/chinedu-obi/medibill/internal/http/ledgerentry"
	"github.com/chinedu-obi/medibill/internal/http/patient"
	"github.com/chinedu-obi/medibill/internal/http/statement"
	"github.com/chinedu-obi/medibill/internal/http/wallet"
)

func New(
	jwtSecret string,
	allowedOrigins []string,
	invoicesV1 *invoice.Handler,
	entriesV1 *ledgerentry.Handler,
	walletsV1 *wallet.Handler,
	statementsV1 *statement.Handler,
	patientsV1 *patient.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(jwtSecret))

		r.Route("/invoices", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			invoicesV1.Routes(r)
		})

		r.Route("/entries", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			entriesV1.Routes(r)
		})

		r.Route("/wallets", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			walletsV1.Routes(r)
		})

		r.Route("/statements", statementsV1.Routes)

		r.Route("/patients", func(r chi.Router) {
			patientsV1.Routes(r)
		})
	})

	return router
}
