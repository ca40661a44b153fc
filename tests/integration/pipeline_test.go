//go:build integration

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/Sternrassler/animelist-etl/internal/testutil"
	"github.com/Sternrassler/animelist-etl/pkg/dag"
	"github.com/Sternrassler/animelist-etl/pkg/dataset"
	"github.com/Sternrassler/animelist-etl/pkg/extract"
	"github.com/Sternrassler/animelist-etl/pkg/handoff"
	"github.com/Sternrassler/animelist-etl/pkg/jikan"
	"github.com/Sternrassler/animelist-etl/pkg/load"
	"github.com/Sternrassler/animelist-etl/pkg/transform"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// setupPostgres creates a PostgreSQL container and returns an open sink.
func setupPostgres(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "airflow",
			"POSTGRES_PASSWORD": "airflow",
			"POSTGRES_DB":       "airflow",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Postgres container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dsn := fmt.Sprintf("host=%s port=%s user=airflow password=airflow dbname=airflow sslmode=disable",
		host, port.Port())
	db, err := load.Open(load.DriverPostgres, dsn)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to open sink: %v", err)
	}

	cleanup := func() {
		load.Close(db)
		container.Terminate(ctx)
	}

	return db, cleanup
}

// seedMock serves two pages for 2020 winter and one for 2020 spring.
func seedMock(mock *testutil.MockJikan) {
	noScore := testutil.AnimeRecord(2, "Second")
	delete(noScore, "score")
	noSeason := testutil.AnimeRecord(3, "Third")
	noSeason["season"] = nil
	noSeason["year"] = nil

	mock.SetSeasonPage(2020, "winter", 1, testutil.NewPageResponse(testutil.AnimeRecord(1, "First"), noScore))
	mock.SetSeasonPage(2020, "winter", 2, testutil.NewPageResponse(noSeason))

	spring := testutil.AnimeRecord(4, "Fourth")
	spring["season"] = "spring"
	spring["score"] = 9.0
	mock.SetSeasonPage(2020, "spring", 1, testutil.NewPageResponse(spring))
}

// TestFullPipeline runs extract, transform and load as separate tasks that
// only share the Redis exchange, then checks the Postgres snapshot.
func TestFullPipeline(t *testing.T) {
	redisClient, cleanupRedis := setupRedis(t)
	defer cleanupRedis()

	db, cleanupPostgres := setupPostgres(t)
	defer cleanupPostgres()

	mock := testutil.NewMockJikan()
	defer mock.Close()
	seedMock(mock)

	ctx := context.Background()
	exchange := handoff.NewRedis(redisClient, time.Hour)
	runID := "integration"
	rawKey := handoff.Key{RunID: runID, Name: handoff.RawDataset}
	cleanKey := handoff.Key{RunID: runID, Name: handoff.CleanedRecords}

	cfg := jikan.DefaultConfig("animelist-etl-integration")
	cfg.BaseURL = mock.URL()
	client, err := jikan.New(cfg)
	if err != nil {
		t.Fatalf("jikan.New() error = %v", err)
	}

	extractTask := func(ctx context.Context) (int, error) {
		ex, err := extract.New(client, extract.Config{
			StartYear:      2020,
			EndYear:        2021,
			Seasons:        []jikan.Season{jikan.SeasonWinter, jikan.SeasonSpring},
			PagesPerSeason: 2,
			Delay:          10 * time.Millisecond,
		})
		if err != nil {
			return 0, err
		}
		ds, err := ex.Extract(ctx)
		if err != nil {
			return 0, err
		}
		return ds.Len() - 1, exchange.Push(ctx, rawKey, ds)
	}

	transformTask := func(ctx context.Context) (int, error) {
		ds := dataset.New()
		if err := exchange.Pull(ctx, rawKey, ds); err != nil {
			return 0, err
		}
		records, err := transform.New().Transform(ds)
		if err != nil {
			return 0, err
		}
		return len(records), exchange.Push(ctx, cleanKey, records)
	}

	loadTask := func(ctx context.Context) (int, error) {
		var records []transform.CleanedRecord
		if err := exchange.Pull(ctx, cleanKey, &records); err != nil {
			return 0, err
		}
		loader, err := load.New(db, load.DefaultTarget(), 2)
		if err != nil {
			return 0, err
		}
		return len(records), loader.Load(ctx, records)
	}

	d, err := dag.New("animelist_dag", dag.Config{Retries: 0},
		dag.Task{ID: dag.TaskExtract, Run: extractTask},
		dag.Task{ID: dag.TaskTransform, Run: transformTask},
		dag.Task{ID: dag.TaskLoad, Run: loadTask},
	)
	if err != nil {
		t.Fatalf("dag.New() error = %v", err)
	}

	reports, err := d.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if reports[0].Rows != 4 || reports[2].Rows != 4 {
		t.Errorf("unexpected row counts: %+v", reports)
	}

	read := func() []transform.CleanedRecord {
		var got []transform.CleanedRecord
		table := "transformed_data.jikan_animelist_2020-2023"
		if err := db.Table(table).Order("title").Find(&got).Error; err != nil {
			t.Fatalf("read snapshot: %v", err)
		}
		return got
	}

	got := read()
	if len(got) != 4 {
		t.Fatalf("snapshot has %d rows, want 4", len(got))
	}

	byTitle := make(map[string]transform.CleanedRecord, len(got))
	for _, r := range got {
		byTitle[r.Title] = r
	}
	// median of [7.5, 7.5, 9.0]
	if score := byTitle["Second"].Score; score == nil || *score != 7.5 {
		t.Errorf("imputed score = %v, want 7.5", score)
	}
	if byTitle["Third"].Season != "winter" || byTitle["Third"].Year != 2020 {
		t.Errorf("back-filled partition = %s/%d, want winter/2020", byTitle["Third"].Season, byTitle["Third"].Year)
	}
	if byTitle["Fourth"].Season != "spring" {
		t.Errorf("Fourth season = %s, want spring", byTitle["Fourth"].Season)
	}
	if byTitle["First"].GenreExtracted != "Action, Drama" {
		t.Errorf("GenreExtracted = %q", byTitle["First"].GenreExtracted)
	}

	// Loading the same records again must leave the same snapshot.
	if _, err := d.RunTask(ctx, dag.TaskLoad); err != nil {
		t.Fatalf("RunTask(load) error = %v", err)
	}
	again := read()
	if len(again) != len(got) {
		t.Fatalf("reload changed row count: %d != %d", len(again), len(got))
	}
	for i := range got {
		if got[i] != again[i] {
			t.Errorf("row %d changed on reload: %+v != %+v", i, got[i], again[i])
		}
	}

	if mock.GetRequestCount() != 4 {
		t.Errorf("requests = %d, want 4", mock.GetRequestCount())
	}
}

// TestPacingAgainstMock verifies consecutive requests keep the configured gap.
func TestPacingAgainstMock(t *testing.T) {
	mock := testutil.NewMockJikan()
	defer mock.Close()

	cfg := jikan.DefaultConfig("animelist-etl-integration")
	cfg.BaseURL = mock.URL()
	client, err := jikan.New(cfg)
	if err != nil {
		t.Fatalf("jikan.New() error = %v", err)
	}

	delay := 100 * time.Millisecond
	ex, err := extract.New(client, extract.Config{
		StartYear:      2020,
		EndYear:        2022,
		Seasons:        jikan.Seasons,
		PagesPerSeason: 1,
		Delay:          delay,
	})
	if err != nil {
		t.Fatalf("extract.New() error = %v", err)
	}

	if _, err := ex.Extract(context.Background()); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	reqs := mock.Requests()
	if len(reqs) != 8 {
		t.Fatalf("requests = %d, want 8", len(reqs))
	}
	for i := 1; i < len(reqs); i++ {
		if gap := reqs[i].At.Sub(reqs[i-1].At); gap < delay-10*time.Millisecond {
			t.Errorf("gap %d = %v, want >= %v", i, gap, delay)
		}
	}
}
