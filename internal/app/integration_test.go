package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmrzaf/costgen/internal/domain"
	"github.com/mmrzaf/costgen/internal/infra/repos/runs"
	"github.com/mmrzaf/costgen/internal/infra/repos/schemas"
	"github.com/mmrzaf/costgen/internal/logging"
)

const podUsageSchema = `name: ocp_pod_usage
provider: ocp
columns:
  - name: report_period_start
    type: datetime
    default: "2021-01-01"
    format: "%Y-%m-%d"
  - name: report_period_end
    type: datetime
    default: "2021-01-02"
    format: "%Y-%m-%d"
  - name: interval_start
    type: datetime
    format: "%Y-%m-%d %H:%M:%S"
  - name: interval_end
    type: datetime
    format: "%Y-%m-%d %H:%M:%S"
  - name: namespace
    type: choice
    seed: [default, kube-system, costgen]
  - name: pod
    type: string
    format: "pod-{}-{}"
  - name: pod_usage_cpu_core_seconds
    type: calc
  - name: pod_labels
    type: tag
`

func newService(t *testing.T) (*RunService, string) {
	t.Helper()
	dir := t.TempDir()
	schemasDir := filepath.Join(dir, "schemas")
	if err := os.MkdirAll(schemasDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(schemasDir, "ocp_pod_usage.yaml"), []byte(podUsageSchema), 0o644); err != nil {
		t.Fatal(err)
	}

	runRepo := runs.NewSQLiteRepository(filepath.Join(dir, "runs.db"))
	if err := runRepo.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = runRepo.Close() })

	svc := NewRunService(schemas.NewFileRepository(schemasDir), runRepo, logging.NewLogger("error"), 10)
	return svc, dir
}

func countRows(t *testing.T, dbPath, table string) int {
	t.Helper()
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM "` + table + `"`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestGenerate_UntilPeriodEndIntoSQLite(t *testing.T) {
	svc, dir := newService(t)
	out := filepath.Join(dir, "usage.db")
	seed := int64(11)

	run, err := svc.Generate(context.Background(), &domain.RunRequest{
		SchemaID:       "ocp_pod_usage",
		UntilPeriodEnd: true,
		Seed:           &seed,
		Sink:           domain.SinkConfig{Kind: domain.SinkKindSQLite, DSN: out, Table: "pod_usage"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != domain.RunStatusSuccess || run.Provider != "ocp" || run.ConfigHash == "" {
		t.Fatalf("unexpected run: %+v", run)
	}

	var stats domain.RunStats
	if err := json.Unmarshal(run.Stats, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.RowsGenerated != 24 || stats.StopReason != domain.StopReasonPeriodEnd || stats.Batches != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if n := countRows(t, out, "pod_usage"); n != 24 {
		t.Fatalf("expected 24 rows in sink, got %d", n)
	}

	stored, err := svc.GetRun(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domain.RunStatusSuccess || stored.CompletedAt == nil || stored.Seed != seed {
		t.Fatalf("unexpected stored run: %+v", stored)
	}
}

func TestGenerate_PeriodOverridesDoNotTouchRepository(t *testing.T) {
	svc, dir := newService(t)
	start := time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 2, 3, 0, 0, 0, 0, time.UTC)
	out := filepath.Join(dir, "feb.db")

	run, err := svc.Generate(context.Background(), &domain.RunRequest{
		SchemaID:       "ocp_pod_usage",
		Start:          &start,
		End:            &end,
		UntilPeriodEnd: true,
		Sink:           domain.SinkConfig{Kind: domain.SinkKindSQLite, DSN: out, Table: "pod_usage"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n := countRows(t, out, "pod_usage"); n != 48 {
		t.Fatalf("expected 48 hourly rows for two days, got %d", n)
	}

	db, err := sql.Open("sqlite3", out)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var first string
	if err := db.QueryRow(`SELECT interval_start FROM pod_usage LIMIT 1`).Scan(&first); err != nil {
		t.Fatal(err)
	}
	if first != "2021-02-01 00:00:00" {
		t.Fatalf("expected overridden period start, got %s (run %s)", first, run.ID)
	}

	schema, err := svc.LoadSchema("ocp_pod_usage", "")
	if err != nil {
		t.Fatal(err)
	}
	if schema.Columns[0].Default != "2021-01-01" {
		t.Fatalf("repository schema was modified: %v", schema.Columns[0].Default)
	}
}

func TestGenerate_SeedIsReproducible(t *testing.T) {
	svc, dir := newService(t)
	seed := int64(99)

	read := func(name string) string {
		path := filepath.Join(dir, name)
		if _, err := svc.Generate(context.Background(), &domain.RunRequest{
			SchemaPath: "ocp_pod_usage.yaml",
			Rows:       12,
			Seed:       &seed,
			Sink:       domain.SinkConfig{Kind: domain.SinkKindCSV, DSN: path},
		}); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}

	a, b := read("a.csv"), read("b.csv")
	if a != b {
		t.Fatalf("expected identical output for the same seed:\n%s\n---\n%s", a, b)
	}
}

func TestGenerate_RecordsFailedRun(t *testing.T) {
	svc, dir := newService(t)

	run, err := svc.Generate(context.Background(), &domain.RunRequest{
		SchemaID: "ocp_pod_usage",
		Rows:     30,
		Sink:     domain.SinkConfig{Kind: domain.SinkKindCSV, DSN: filepath.Join(dir, "out.csv")},
	})
	if err == nil {
		t.Fatal("expected the run to leave the report period")
	}
	if run == nil {
		t.Fatal("expected the failed run to be recorded")
	}

	failed, err := svc.ListRuns(10, string(domain.RunStatusFailed))
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 1 || failed[0].ID != run.ID || failed[0].Error == "" {
		t.Fatalf("unexpected failed runs: %+v", failed)
	}
}

func TestGenerate_RejectsBadRequests(t *testing.T) {
	svc, dir := newService(t)
	sink := domain.SinkConfig{Kind: domain.SinkKindCSV, DSN: filepath.Join(dir, "out.csv")}
	late := time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)
	early := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := map[string]*domain.RunRequest{
		"no schema":       {Rows: 1, Sink: sink},
		"unknown schema":  {SchemaID: "missing", Rows: 1, Sink: sink},
		"bad provider":    {SchemaID: "ocp_pod_usage", Provider: "oracle", Rows: 1, Sink: sink},
		"bad sink":        {SchemaID: "ocp_pod_usage", Rows: 1, Sink: domain.SinkConfig{Kind: "kafka"}},
		"escape":          {SchemaPath: "../runs.db", Rows: 1, Sink: sink},
		"inverted period": {SchemaID: "ocp_pod_usage", Start: &late, End: &early, UntilPeriodEnd: true, Sink: sink},
	}
	for name, req := range cases {
		if _, err := svc.Generate(context.Background(), req); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	all, err := svc.ListRuns(0, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Fatalf("rejected requests must not record runs, got %d", len(all))
	}
}
