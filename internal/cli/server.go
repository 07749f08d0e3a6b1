package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"quiz-web/internal/app"
	"quiz-web/internal/config"
	"quiz-web/internal/infra/memory"
	"quiz-web/internal/infra/postgres"
	redissession "quiz-web/internal/infra/redis"
	transport "quiz-web/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	idleTimeout := config.Duration(cfg.Session.IdleTimeout, 5*time.Minute)
	sessionAge := config.Duration(cfg.Session.MaxAge, 4*time.Hour)
	sweepInterval := config.Duration(cfg.Session.SweepInterval, 15*time.Minute)

	var (
		userRepo     app.UserRepository
		quizRepo     app.QuizRepository
		groupRepo    app.GroupRepository
		playSource   app.PlayQuizSource
		sessionStore app.SessionStore
	)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		db := postgres.Open(cfg.Postgres.URL)
		defer db.Close()

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		userRepo = postgres.NewUserRepository(db)
		quizRepo = postgres.NewQuizRepository(db)
		groupRepo = postgres.NewGroupRepository(db)
		playSource = postgres.NewPlaySource(pool)
		sessionStore = postgres.NewSessionStore(db)
	} else {
		log.Printf("no postgres url configured, using in-memory storage with sample data")
		quizzes := memory.NewQuizRepository()
		groups := memory.NewGroupRepository()
		users := memory.NewUserRepository(quizzes)
		seedSampleData(ctx, users, quizzes, groups)

		userRepo = users
		quizRepo = quizzes
		groupRepo = groups
		playSource = memory.NewPlaySource(quizzes, groups)
		sessionStore = memory.NewSessionStore()
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		sessionStore = redissession.NewSessionStore(client)
	}

	userService := app.NewUserService(userRepo)
	server := transport.NewServer(transport.Options{
		Users:   userService,
		Quizzes: app.NewQuizService(quizRepo),
		Groups:  app.NewGroupService(groupRepo),
		Play:    app.NewRandomPlayEngine(playSource),

		SessionStore: sessionStore,
		IdleTimeout:  idleTimeout,
		SessionAge:   sessionAge,

		GithubClientID:     cfg.Github.ClientID,
		GithubClientSecret: cfg.Github.ClientSecret,
		GithubCallbackBase: cfg.Github.CallbackBaseURL,

		OpenRegister: cfg.OpenRegister,
		Production:   cfg.Production,
	})

	httpServer := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		log.Printf("starting quiz web server on :%s", finalPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		err := server.SweepSessions(groupCtx, sweepInterval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// seedSampleData fills the in-memory stores so the app is playable without a
// database: one admin, a few quizzes and one group.
func seedSampleData(ctx context.Context, users *memory.UserRepository, quizzes *memory.QuizRepository, groups *memory.GroupRepository) {
	userService := app.NewUserService(users)
	admin, err := userService.Register(ctx, "admin", "1234")
	if err != nil {
		log.Printf("seed admin: %v", err)
		return
	}
	users.SetAdmin(admin.ID, true)

	samples := [][2]string{
		{"Capital of Italy", "Rome"},
		{"Capital of France", "Paris"},
		{"Capital of Spain", "Madrid"},
		{"Capital of Portugal", "Lisbon"},
	}
	quizService := app.NewQuizService(quizzes)
	var ids []int64
	for _, sample := range samples {
		created, err := quizService.Create(ctx, admin.ID, sample[0], sample[1])
		if err != nil {
			log.Printf("seed quiz: %v", err)
			continue
		}
		ids = append(ids, created.ID)
	}

	groupService := app.NewGroupService(groups)
	capitals, err := groupService.Create(ctx, "Capitals")
	if err != nil {
		log.Printf("seed group: %v", err)
		return
	}
	if err := groupService.Update(ctx, capitals, capitals.Name, ids); err != nil {
		log.Printf("seed group members: %v", err)
	}
}
