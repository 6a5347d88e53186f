package api

import (
	"context"
	"net/http"

	"github.com/csportugues/portal/internal/auth"
	"github.com/csportugues/portal/internal/metrics"
	"github.com/csportugues/portal/internal/ratelimit"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RouterDeps holds all dependencies for the API router.
type RouterDeps struct {
	Teams         teamService
	Streamers     streamerService
	Users         userStore
	Sessions      auth.SessionLookup
	Notifications notificationStore
	Players       playerStore
	Profiles      profileStore
	Content       contentStore

	TeamStats     teamStats
	StreamerStats streamerStats
	UserCount     counter
	PlayerCount   counter
	AuditLog      auditReader

	LoginLimiter   *ratelimit.Limiter
	Metrics        *metrics.Metrics
	MetricsHandler http.HandlerFunc
	DBPing         func(ctx context.Context) error
	AllowedOrigins []string
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(secureHeaders)
	r.Use(corsMiddleware(deps.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(metricsMiddleware(deps.Metrics))
	}
	r.Use(slogRequestLogger)

	// Handlers.
	authH := newAuthHandler(deps.Users, deps.Metrics)
	teams := newTeamsHandler(deps.Teams)
	streamers := newStreamersHandler(deps.Streamers)
	notifications := newNotificationsHandler(deps.Notifications)
	players := newPlayersHandler(deps.Players)
	profiles := newProfileHandler(deps.Profiles)
	contentH := newContentHandler(deps.Content)
	admin := newAdminHandler(deps.TeamStats, deps.StreamerStats, deps.UserCount, deps.PlayerCount, deps.AuditLog)

	sessionAuth := auth.SessionMiddleware(deps.Sessions)
	adminAuth := auth.AdminSessionMiddleware(deps.Sessions)

	// Health check.
	r.Get("/health", healthHandler(deps.DBPing))

	// Metrics.
	if deps.MetricsHandler != nil {
		r.Get("/metrics", deps.MetricsHandler)
	}

	// Authentication. Credential endpoints are rate limited per client IP.
	r.Route("/api/auth", func(ar chi.Router) {
		credential := ar
		if deps.LoginLimiter != nil {
			credential = ar.With(loginLimiter(deps))
		}
		credential.Post("/register", authH.Register)
		credential.Post("/login", authH.Login)

		ar.Post("/logout", authH.Logout)
		ar.With(sessionAuth).Get("/me", authH.Me)
	})

	// Teams.
	r.Get("/api/teams", teams.List)
	r.With(adminAuth).Get("/api/teams/pending", teams.ListPending)
	r.With(sessionAuth).Get("/api/teams/mine", teams.Mine)
	r.Get("/api/teams/{id}", teams.Get)
	r.With(sessionAuth).Post("/api/teams", teams.Create)
	r.With(adminAuth).Put("/api/teams/{id}/approve", teams.Approve)
	r.With(adminAuth).Put("/api/teams/{id}/reject", teams.Reject)
	r.With(sessionAuth).Post("/api/teams/{id}/join", teams.Join)
	r.With(sessionAuth).Put("/api/teams/{teamId}/members/{userId}/approve", teams.ApproveMember)

	// Streamers.
	r.Get("/api/streamers", streamers.List)
	r.With(adminAuth).Get("/api/streamers/pending", streamers.ListPending)
	r.With(sessionAuth).Post("/api/streamers/apply", streamers.Apply)
	r.With(adminAuth).Put("/api/streamers/{id}/verify", streamers.Verify)
	r.With(adminAuth).Put("/api/streamers/{id}/reject", streamers.Reject)

	// Notifications.
	r.With(sessionAuth).Get("/api/notifications", notifications.List)
	r.With(sessionAuth).Put("/api/notifications/{id}/read", notifications.MarkRead)

	// Player matchmaking directory.
	r.Get("/api/players", players.List)
	r.Get("/api/players/{id}", players.Get)
	r.With(sessionAuth).Post("/api/players", players.Create)
	r.With(sessionAuth).Put("/api/players/{id}", players.Update)

	// User profile.
	r.With(sessionAuth).Get("/api/profile", profiles.Get)
	r.With(sessionAuth).Put("/api/profile", profiles.Update)

	// Read-only content.
	r.Get("/api/matches", contentH.ListMatches)
	r.Get("/api/matches/{id}", contentH.GetMatch)
	r.Get("/api/tournaments", contentH.ListTournaments)
	r.Get("/api/tournaments/{id}", contentH.GetTournament)
	r.Get("/api/news", contentH.ListNews)
	r.Get("/api/news/{id}", contentH.GetArticle)

	// Admin dashboard.
	r.With(adminAuth).Get("/api/admin/stats", admin.Stats)

	return r
}

// loginLimiter wraps the credential rate limiter and counts rejections.
func loginLimiter(deps RouterDeps) func(http.Handler) http.Handler {
	inner := ratelimit.Middleware(deps.LoginLimiter)
	return func(next http.Handler) http.Handler {
		limited := inner(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			limited.ServeHTTP(ww, r)
			if ww.Status() == http.StatusTooManyRequests && deps.Metrics != nil {
				deps.Metrics.IncRateLimitRejection()
			}
		})
	}
}

// healthHandler reports liveness and database reachability.
func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":   "degraded",
					"database": "unavailable",
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status":   "ok",
			"database": "connected",
		})
	}
}
