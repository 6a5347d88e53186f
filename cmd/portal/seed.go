package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/csportugues/portal/internal/audit"
	"github.com/csportugues/portal/internal/auth"
	"github.com/csportugues/portal/internal/config"
	"github.com/csportugues/portal/internal/moderation"
	"github.com/csportugues/portal/internal/notify"
	"github.com/csportugues/portal/internal/player"
	"github.com/csportugues/portal/internal/streamer"
	"github.com/csportugues/portal/internal/team"
	"github.com/csportugues/portal/internal/user"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed a demo admin, users, teams, and a streamer application",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

const (
	seedAdminPassword = "admin123"
	seedUserPassword  = "portal123"
)

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	userStore := user.NewStore(pool, cfg.Auth.SessionDuration)
	teamStore := team.NewStore(pool)
	streamerStore := streamer.NewStore(pool)
	notifyStore := notify.NewStore(pool)
	auditStore := audit.NewStore(pool)
	playerStore := player.NewStore(pool)

	// Check if seed has already run.
	existing, err := userStore.Count(ctx)
	if err != nil {
		return fmt.Errorf("checking existing users: %w", err)
	}
	if existing > 0 {
		slog.Info("demo data already exists, skipping seed")
		return nil
	}

	admin, err := userStore.Create(ctx, user.CreateUserInput{
		Username: "admin",
		Password: seedAdminPassword,
		Role:     user.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}
	slog.Info("created admin", "id", admin.ID, "username", admin.Username)

	var players []*user.User
	for _, username := range []string{"joao", "maria"} {
		u, err := userStore.Create(ctx, user.CreateUserInput{
			Username: username,
			Password: seedUserPassword,
			Role:     user.RoleUser,
		})
		if err != nil {
			return fmt.Errorf("creating user %q: %w", username, err)
		}
		slog.Info("created user", "id", u.ID, "username", u.Username)
		players = append(players, u)
	}

	// Run submissions through the real workflow so notifications and the
	// audit trail are populated like production data.
	engine := moderation.NewEngine(teamStore, streamerStore, notify.NewFanout(notifyStore, userStore), auditStore)

	adminCaller := callerFor(admin)
	joao := callerFor(players[0])
	maria := callerFor(players[1])

	approved, err := engine.SubmitTeam(ctx, joao, team.CreateTeamInput{
		Name:        "Lisboa Lynx",
		Description: "Equipa competitiva de Lisboa.",
		Tier:        "Semi-Pro",
	})
	if err != nil {
		return fmt.Errorf("submitting team: %w", err)
	}
	if _, err := engine.ApproveTeam(ctx, adminCaller, approved.ID); err != nil {
		return fmt.Errorf("approving team: %w", err)
	}
	slog.Info("created approved team", "id", approved.ID, "name", approved.Name)

	pending, err := engine.SubmitTeam(ctx, maria, team.CreateTeamInput{
		Name:        "Porto Phantoms",
		Description: "À procura de jogadores da zona norte.",
	})
	if err != nil {
		return fmt.Errorf("submitting team: %w", err)
	}
	slog.Info("created pending team", "id", pending.ID, "name", pending.Name)

	app, err := engine.SubmitStreamerApplication(ctx, maria, streamer.CreateStreamerInput{
		Name:            "MariaPlays",
		Platform:        "twitch",
		ChannelURL:      "https://twitch.tv/mariaplays",
		Description:     "Streams diários de FPS.",
		ApplicationType: streamer.TypeStreamer,
	})
	if err != nil {
		return fmt.Errorf("submitting streamer application: %w", err)
	}
	slog.Info("created pending streamer application", "id", app.ID, "name", app.Name)

	if _, err := playerStore.Create(ctx, players[0].ID, player.Input{
		Position:     "IGL",
		Experience:   "3 anos competitivos",
		Availability: "Noites e fins de semana",
		Skills:       []string{"shotcalling", "aim"},
		Contact:      "joao#1234",
	}); err != nil {
		return fmt.Errorf("creating player profile: %w", err)
	}

	fmt.Printf("\n=== Demo Data Seeded ===\n")
	fmt.Printf("Admin:     admin / %s\n", seedAdminPassword)
	fmt.Printf("Users:     joao, maria / %s\n", seedUserPassword)
	fmt.Printf("Teams:     %q approved, %q pending review\n", approved.Name, pending.Name)
	fmt.Printf("Streamer:  %q pending review\n", app.Name)
	fmt.Printf("\nTry it:\n")
	fmt.Printf("  curl http://localhost:%d/api/teams\n", cfg.Server.Port)
	fmt.Printf("  curl -X POST http://localhost:%d/api/auth/login -d '{\"username\":\"admin\",\"password\":\"%s\"}'\n", cfg.Server.Port, seedAdminPassword)

	return nil
}

func callerFor(u *user.User) *auth.User {
	return &auth.User{ID: u.ID, Username: u.Username, Role: u.Role}
}
