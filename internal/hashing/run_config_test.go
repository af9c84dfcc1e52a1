package hashing

import (
	"testing"
	"time"

	"github.com/mmrzaf/costgen/internal/domain"
)

func testSchema() *domain.Schema {
	return &domain.Schema{
		ID:       "ocp",
		Name:     "ocp_pod_usage",
		Provider: "ocp",
		Columns: []domain.Column{
			{Name: "report_period_start", Type: "datetime", Default: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), Format: "%Y-%m-%d"},
			{Name: "namespace", Type: "string", Format: "ns-{}", Seed: []interface{}{"a", "b"}},
		},
	}
}

func TestHashRunConfig_IncludesSinkRowsAndSeed(t *testing.T) {
	sc := testSchema()
	sink := domain.SinkConfig{Kind: "sqlite", DSN: "/tmp/out.db", Table: "usage"}

	h1, err := HashRunConfig(sc, "ocp", sink, 10, false, 11)
	if err != nil {
		t.Fatal(err)
	}
	other := sink
	other.Table = "usage2"
	h2, err := HashRunConfig(sc, "ocp", other, 10, false, 11)
	if err != nil {
		t.Fatal(err)
	}
	h3, err := HashRunConfig(sc, "ocp", sink, 20, false, 11)
	if err != nil {
		t.Fatal(err)
	}
	h4, err := HashRunConfig(sc, "ocp", sink, 10, false, 12)
	if err != nil {
		t.Fatal(err)
	}
	h5, err := HashRunConfig(sc, "ocp", sink, 10, true, 11)
	if err != nil {
		t.Fatal(err)
	}

	if h1 == h2 {
		t.Fatal("expected sink table to affect hash")
	}
	if h1 == h3 {
		t.Fatal("expected row count to affect hash")
	}
	if h1 == h4 {
		t.Fatal("expected seed to affect hash")
	}
	if h1 == h5 {
		t.Fatal("expected stop mode to affect hash")
	}
}

func TestHashSchema_StableAndSensitive(t *testing.T) {
	a, err := HashSchema(testSchema())
	if err != nil {
		t.Fatal(err)
	}
	b, err := HashSchema(testSchema())
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatal("expected identical schemas to hash equally")
	}

	changed := testSchema()
	changed.Columns[0].Default = time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)
	c, err := HashSchema(changed)
	if err != nil {
		t.Fatal(err)
	}
	if a == c {
		t.Fatal("expected period default to affect hash")
	}

	described := testSchema()
	described.Description = "docs only"
	d, _ := HashSchema(described)
	if a != d {
		t.Fatal("description must not affect hash")
	}
}
