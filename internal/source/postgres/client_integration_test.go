//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"

	"mysteryweb/internal/entity"
	"mysteryweb/internal/logger"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	dsn := os.Getenv("MYSTERYWEB_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSTERYWEB_TEST_DSN not set")
	}
	ctx := context.Background()
	client, err := New(ctx, dsn, logger.Nop())
	if err != nil {
		t.Fatalf("connecting to test postgres: %v", err)
	}
	t.Cleanup(func() { _ = client.Close(ctx) })
	if err := client.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if _, err := client.pool.Exec(ctx, "TRUNCATE characters, elements, puzzles, timeline_events"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return client
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	client := testClient(t)
	if err := client.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema (idempotent): %v", err)
	}
}

func TestImportAndLoad(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	in := &entity.Dataset{
		Characters: []entity.Character{{ID: "char-alex", Name: "Alex", Tier: "Core", OwnedElementIDs: []string{"el-letter"}}},
		Elements: []entity.Element{{
			ID:                   "el-letter",
			Name:                 "Letter",
			RequiredForPuzzleIDs: []string{"pz-safe"},
			SFPatterns:           &entity.SFPatterns{RFID: "A1", ValueRating: 4},
		}},
		Puzzles:  []entity.Puzzle{{ID: "pz-safe", Name: "Safe", SubPuzzleIDs: []string{"pz-dial"}}},
		Timeline: []entity.TimelineEvent{{ID: "ev-party", Name: "Party"}},
	}
	if err := client.Import(ctx, in); err != nil {
		t.Fatalf("import: %v", err)
	}
	if err := client.Import(ctx, in); err != nil {
		t.Fatalf("import (upsert): %v", err)
	}

	out, err := client.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Len() != 4 {
		t.Fatalf("expected 4 entities, got %d", out.Len())
	}
	if out.Characters[0].Tier != "Core" {
		t.Fatalf("expected tier Core, got %q", out.Characters[0].Tier)
	}
	if out.Elements[0].SFPatterns == nil || out.Elements[0].SFPatterns.RFID != "A1" {
		t.Fatalf("expected sf patterns, got %#v", out.Elements[0].SFPatterns)
	}
	if len(out.Puzzles[0].SubPuzzleIDs) != 1 {
		t.Fatalf("expected sub puzzle ids, got %#v", out.Puzzles[0].SubPuzzleIDs)
	}
	if len(out.Timeline[0].CharactersInvolvedIDs) != 0 {
		t.Fatalf("expected no involved characters, got %#v", out.Timeline[0].CharactersInvolvedIDs)
	}
}
