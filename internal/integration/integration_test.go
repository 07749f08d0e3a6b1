package integration

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun/migrate"

	"quiz-web/internal/app"
	"quiz-web/internal/domain"
	"quiz-web/internal/infra/postgres"
	pgmigrations "quiz-web/internal/infra/postgres/migrations"
	infraredis "quiz-web/internal/infra/redis"
)

func TestRandomPlayEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	dsn, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := postgres.Open(dsn)
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	users := app.NewUserService(postgres.NewUserRepository(db))
	quizRepo := postgres.NewQuizRepository(db)
	groupRepo := postgres.NewGroupRepository(db)

	admin, err := users.Register(ctx, "admin", "1234")
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}
	if _, ok, err := users.Verify(ctx, "admin", "1234"); err != nil || !ok {
		t.Fatalf("verify admin: ok=%v err=%v", ok, err)
	}

	answers := map[string]string{
		"Capital of France": "Paris",
		"Capital of Spain":  "Madrid",
		"Capital of Italy":  "Rome",
	}
	var ids []int64
	for question, answer := range answers {
		quiz := &domain.Quiz{Question: question, Answer: answer, AuthorID: admin.ID}
		if err := quizRepo.Create(ctx, quiz); err != nil {
			t.Fatalf("create quiz: %v", err)
		}
		ids = append(ids, quiz.ID)
	}
	group := &domain.Group{Name: "Capitals"}
	if err := groupRepo.Create(ctx, group); err != nil {
		t.Fatalf("create group: %v", err)
	}
	if err := groupRepo.Update(ctx, group, group.Name, ids); err != nil {
		t.Fatalf("attach members: %v", err)
	}

	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	engine := app.NewRandomPlayEngineWithRand(postgres.NewPlaySource(pool), rand.New(rand.NewSource(1)))

	// Session state rides in Redis while progress is relational.
	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	sessions := infraredis.NewSessionStore(redisClient)

	sid := "integration-sid"
	state := domain.SessionState{UserID: admin.ID}

	for round := 1; round <= len(answers); round++ {
		play := state.PlayState(group.ID)
		play, quiz, score, err := engine.PresentNext(ctx, group.ID, play)
		if err != nil {
			t.Fatalf("round %d: present next: %v", round, err)
		}
		if quiz == nil {
			t.Fatalf("round %d: expected a quiz", round)
		}
		if score != round-1 {
			t.Fatalf("round %d: score %d", round, score)
		}

		play, correct, score, _ := engine.CheckAnswer(play, quiz, answers[quiz.Question])
		if !correct || score != round {
			t.Fatalf("round %d: correct=%v score=%d", round, correct, score)
		}
		state.SetPlayState(group.ID, play)

		// Persist and reload through Redis between rounds, like the HTTP
		// middleware does.
		if err := sessions.Save(ctx, sid, state, time.Now().Add(time.Hour)); err != nil {
			t.Fatalf("save session: %v", err)
		}
		loaded, ok, err := sessions.Load(ctx, sid)
		if err != nil || !ok {
			t.Fatalf("load session: ok=%v err=%v", ok, err)
		}
		state = loaded
	}

	play := state.PlayState(group.ID)
	_, quiz, score, err := engine.PresentNext(ctx, group.ID, play)
	if err != nil {
		t.Fatalf("present next after completion: %v", err)
	}
	if quiz != nil || score != len(answers) {
		t.Fatalf("expected completion at score %d, got quiz=%v score=%d", len(answers), quiz, score)
	}
}

func TestSessionPurgeEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	dsn, cleanup := startPostgres(t, ctx)
	defer cleanup()

	db := postgres.Open(dsn)
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := postgres.NewSessionStore(db)
	if err := store.Save(ctx, "stale", domain.SessionState{UserID: 1}, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("save stale: %v", err)
	}
	if err := store.Save(ctx, "live", domain.SessionState{UserID: 2}, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("save live: %v", err)
	}

	if _, ok, _ := store.Load(ctx, "stale"); ok {
		t.Fatalf("expired session must read as absent")
	}

	purged, err := store.PurgeExpired(ctx, time.Now())
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged row, got %d", purged)
	}
	if _, ok, _ := store.Load(ctx, "live"); !ok {
		t.Fatalf("live session swept away")
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
