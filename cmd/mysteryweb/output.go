package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"mysteryweb/internal/builder"
	"mysteryweb/internal/logger"
)

// writeJSON encodes v to path, or to w when path is empty or "-".
func writeJSON(w io.Writer, path string, v any) error {
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}

// readInput reads path, or stdin when path is "-".
func readInput(r io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(r)
	}
	return os.ReadFile(path)
}

func totalMillis(ds []time.Duration) float64 {
	var total time.Duration
	for _, d := range ds {
		total += d
	}
	return float64(total.Microseconds()) / 1000
}

// logBuildStats reports what recorder collected at debug level.
func logBuildStats(log logger.Logger, msg string, recorder *builder.Recorder) {
	log.Debug(msg,
		"builds", recorder.Counter(builder.MetricBuilds),
		"web_builds", recorder.Counter(builder.MetricWebBuilds),
		"nodes", recorder.Counter(builder.MetricNodes),
		"placeholders", recorder.Counter(builder.MetricPlaceholders),
		"build_ms", totalMillis(recorder.Observations(builder.MetricBuildTime)),
		"layout_ms", totalMillis(recorder.Observations(builder.MetricLayoutTime)))
}
