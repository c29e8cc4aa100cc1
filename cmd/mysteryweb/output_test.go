package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"mysteryweb/internal/builder"
	"mysteryweb/internal/entity"
	"mysteryweb/internal/logger"
)

func TestLogBuildStats(t *testing.T) {
	recorder := builder.NewRecorder()
	b := builder.New(builder.WithMetrics(recorder))
	data := &entity.Dataset{
		Characters: []entity.Character{{ID: "c1", OwnedElementIDs: []string{"e1"}}},
		Elements:   []entity.Element{{ID: "e1"}},
	}
	if _, err := b.BuildGraphData(context.Background(), data, builder.Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	logBuildStats(logger.NewConsole(logger.ConsoleParams{Output: &buf, Debug: true}), "stats", recorder)
	out := buf.String()
	for _, want := range []string{"stats", " builds=1", "web_builds=0", "nodes=2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}

	buf.Reset()
	logBuildStats(logger.NewConsole(logger.ConsoleParams{Output: &buf}), "stats", recorder)
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below debug level, got %q", buf.String())
	}
}
