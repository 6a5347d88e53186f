package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/csportugues/portal/internal/api"
	"github.com/csportugues/portal/internal/audit"
	"github.com/csportugues/portal/internal/config"
	"github.com/csportugues/portal/internal/content"
	"github.com/csportugues/portal/internal/metrics"
	"github.com/csportugues/portal/internal/moderation"
	"github.com/csportugues/portal/internal/notify"
	"github.com/csportugues/portal/internal/player"
	"github.com/csportugues/portal/internal/profile"
	"github.com/csportugues/portal/internal/ratelimit"
	"github.com/csportugues/portal/internal/streamer"
	"github.com/csportugues/portal/internal/team"
	"github.com/csportugues/portal/internal/user"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portal API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}
	slog.Info("connected to database")

	userStore := user.NewStore(pool, cfg.Auth.SessionDuration)
	teamStore := team.NewStore(pool)
	streamerStore := streamer.NewStore(pool)
	notifyStore := notify.NewStore(pool)
	auditStore := audit.NewStore(pool)
	playerStore := player.NewStore(pool)
	profileStore := profile.NewStore(pool)
	contentStore := content.NewStore(pool)

	m := metrics.New()
	m.RegisterDBPoolCollector(func() (total, idle, acquired int32) {
		st := pool.Stat()
		return st.TotalConns(), st.IdleConns(), st.AcquiredConns()
	})

	fanout := notify.NewFanout(notifyStore, userStore)
	fanout.SetMetrics(m)

	engine := moderation.NewEngine(teamStore, streamerStore, fanout, auditStore)
	engine.SetMetrics(m)

	limiter := ratelimit.New(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst)

	router := api.NewRouter(api.RouterDeps{
		Teams:         engine,
		Streamers:     engine,
		Users:         userStore,
		Sessions:      user.NewAuthAdapter(userStore),
		Notifications: notifyStore,
		Players:       playerStore,
		Profiles:      profileStore,
		Content:       contentStore,

		TeamStats:     teamStore,
		StreamerStats: streamerStore,
		UserCount:     userStore,
		PlayerCount:   playerStore,
		AuditLog:      auditStore,

		LoginLimiter:   limiter,
		Metrics:        m,
		MetricsHandler: m.Handler(),
		DBPing:         pool.Ping,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}
