package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/identity-api/internal/application/session"
	"github.com/identity-api/internal/application/user"
	"github.com/identity-api/internal/application/verification"
	"github.com/identity-api/internal/config"
	"github.com/identity-api/internal/transport/http/handler"
	appmiddleware "github.com/identity-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	userSvc := user.NewService(deps.UserRepo)
	verificationSvc := verification.NewService(verification.ServiceDeps{
		OtpStore:    deps.OtpStore,
		Credentials: userSvc,
		Tokens:      deps.JWTProvider,
		UsedTokens:  deps.UsedResetTokens,
		Mailer:      deps.Mailer,
		MailTimeout: cfg.MailTimeout,
	})
	sessionSvc := session.NewService(userSvc, deps.JWTProvider)

	healthH := handler.NewHealthHandler()
	verificationH := handler.NewVerificationHandler(verificationSvc)
	resetH := handler.NewPasswordResetHandler(verificationSvc)
	sessionH := handler.NewSessionHandler(sessionSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.With(sensitiveRL.Limit).Post("/send-verification-code", verificationH.SendCode)
		r.With(sensitiveRL.Limit).Post("/verify-code", verificationH.VerifyCode)
		r.With(sensitiveRL.Limit).Post("/request-password-reset", resetH.Request)
		r.With(sensitiveRL.Limit).Post("/finalize-password-reset", resetH.Finalize)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.Get("/sessions", sessionH.GetCurrent)
		})
	})

	return r
}
