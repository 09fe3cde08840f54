package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/kumbirai/my-kasi-bet/internal/app/account"
	"github.com/kumbirai/my-kasi-bet/internal/app/deposit"
	"github.com/kumbirai/my-kasi-bet/internal/app/match"
	"github.com/kumbirai/my-kasi-bet/internal/app/play"
	"github.com/kumbirai/my-kasi-bet/internal/app/withdrawal"
	"github.com/kumbirai/my-kasi-bet/internal/config"
	"github.com/kumbirai/my-kasi-bet/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Services bundles the application services the router exposes.
type Services struct {
	Store       *store.Store
	Accounts    *account.Service
	Play        *play.Service
	Matches     *match.Service
	Deposits    *deposit.Service
	Withdrawals *withdrawal.Service
}

func NewRouter(cfg config.ServerConfig, svc Services) *chi.Mux {
	gateway := NewGatewayHandlers(svc)
	admin := NewAdminHandlers(svc)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", admin.Health())

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())

		r.Group(func(r chi.Router) {
			r.Use(GatewayAuthMiddleware(cfg.GatewayAPIKey))
			r.Post("/users", gateway.Register())
			r.Route("/users/{user_id}", func(r chi.Router) {
				r.Get("/balance", gateway.Balance())
				r.Get("/transactions", gateway.Transactions())
				r.Get("/bets", gateway.Bets())
				r.Post("/games/{game}", gateway.Play())
				r.Post("/deposits", gateway.CreateDeposit())
				r.Post("/deposits/{deposit_id}/proof", gateway.SubmitProof())
				r.Post("/withdrawals", gateway.CreateWithdrawal())
				r.Post("/withdrawals/{withdrawal_id}/cancel", gateway.CancelWithdrawal())
			})
			r.Get("/matches", gateway.ActiveMatches())
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Use(RequireAdminID)
			r.Use(BodyCaptureMiddleware(4096))

			r.Get("/deposits", admin.Deposits())
			r.Post("/deposits/{id}/approve", admin.ApproveDeposit())
			r.Post("/deposits/{id}/reject", admin.RejectDeposit())

			r.Get("/withdrawals", admin.Withdrawals())
			r.Post("/withdrawals/{id}/approve", admin.ApproveWithdrawal())
			r.Post("/withdrawals/{id}/reject", admin.RejectWithdrawal())

			r.Post("/matches", admin.CreateMatch())
			r.Get("/matches", admin.Matches())
			r.Post("/matches/{id}/settle", admin.SettleMatch())
			r.Post("/matches/{id}/resume", admin.ResumeMatch())
			r.Post("/matches/{id}/cancel", admin.CancelMatch())

			r.Post("/bets/{id}/refund", admin.RefundBet())

			r.Get("/ledger", admin.Ledger())
			r.Get("/users/{user_id}/integrity", admin.UserIntegrity())
			r.Post("/users/{user_id}/block", admin.BlockUser(true))
			r.Post("/users/{user_id}/unblock", admin.BlockUser(false))

			r.Get("/debug/vars", expvar.Handler().ServeHTTP)
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 64)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
