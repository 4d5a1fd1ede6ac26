package zerolog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/summarihq/usagekit/pkg/usagekit"
)

func TestZerologLogger_NewLogger(t *testing.T) {
	output := bytes.Buffer{}
	logger := NewLogger(zerolog.New(&output))

	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}
}

func TestZerologLogger_Levels(t *testing.T) {
	output := bytes.Buffer{}
	logger := NewLogger(zerolog.New(&output))

	logger.Debug("debug message", usagekit.Field{Key: "identity", Value: "u1"})
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	logs := output.String()
	for _, want := range []string{"debug message", "info message", "warn message", "error message"} {
		if !strings.Contains(logs, want) {
			t.Errorf("Expected log output to contain %q, got %s", want, logs)
		}
	}
}

func TestZerologLogger_Fields(t *testing.T) {
	output := bytes.Buffer{}
	logger := NewLogger(zerolog.New(&output))

	logger.Warn("repaired corrupt usage record",
		usagekit.Field{Key: "identity", Value: "u1"},
		usagekit.Field{Key: "reason", Value: "unparseable"},
	)

	logs := output.String()
	if !strings.Contains(logs, `"identity":"u1"`) {
		t.Errorf("Expected identity field in log output, got %s", logs)
	}
	if !strings.Contains(logs, `"reason":"unparseable"`) {
		t.Errorf("Expected reason field in log output, got %s", logs)
	}
}

func TestZerologLogger_RespectsLevel(t *testing.T) {
	output := bytes.Buffer{}
	logger := NewLogger(zerolog.New(&output).Level(zerolog.WarnLevel))

	logger.Debug("should not appear")
	logger.Warn("should appear")

	logs := output.String()
	if strings.Contains(logs, "should not appear") {
		t.Errorf("Expected debug log to be suppressed, got %s", logs)
	}
	if !strings.Contains(logs, "should appear") {
		t.Errorf("Expected warn log to be written, got %s", logs)
	}
}
