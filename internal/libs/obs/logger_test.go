package obs

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected zerolog.Level
	}{
		{"info level", "info", zerolog.InfoLevel},
		{"debug level", "debug", zerolog.DebugLevel},
		{"warn level", "warn", zerolog.WarnLevel},
		{"warning alias", "WARNING", zerolog.WarnLevel},
		{"invalid level defaults to info", "invalid", zerolog.InfoLevel},
		{"empty level defaults to info", "", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			InitLogger(tt.level)
			if zerolog.GlobalLevel() != tt.expected {
				t.Errorf("expected level %v, got %v", tt.expected, zerolog.GlobalLevel())
			}
		})
	}
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	first := Logger("test-component")
	first.Info().Msg("ready")
	second := Logger("other")
	second.Info().Msg("ready")

	scanner := bufio.NewScanner(&buf)
	var components []interface{}
	for scanner.Scan() {
		rec := decodeLine(t, scanner.Bytes())
		if rec["instance"] != Instance {
			t.Errorf("expected instance %s, got %v", Instance, rec["instance"])
		}
		components = append(components, rec["component"])
	}
	if len(components) != 2 || components[0] != "test-component" || components[1] != "other" {
		t.Errorf("unexpected components %v", components)
	}
}

func decodeLine(t *testing.T, line []byte) map[string]interface{} {
	t.Helper()
	var rec map[string]interface{}
	if err := json.Unmarshal(line, &rec); err != nil {
		t.Fatalf("log line is not JSON: %v: %s", err, line)
	}
	return rec
}

func TestRecordFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	logger.Info().Msg("hello")

	rec := decodeLine(t, bytes.TrimSpace(buf.Bytes()))

	if rec["message"] != "hello" {
		t.Errorf("expected message hello, got %v", rec["message"])
	}
	if rec["level"] != "INFO" {
		t.Errorf("expected level INFO, got %v", rec["level"])
	}
	if rec["module"] != "logger_test" {
		t.Errorf("expected module logger_test, got %v", rec["module"])
	}
	if rec["function"] != "TestRecordFields" {
		t.Errorf("expected function TestRecordFields, got %v", rec["function"])
	}
	if line, ok := rec["line"].(float64); !ok || line <= 0 {
		t.Errorf("expected positive line number, got %v", rec["line"])
	}
	if rec["instance"] != Instance {
		t.Errorf("expected instance %s, got %v", Instance, rec["instance"])
	}
	if _, ok := rec["exception"]; ok {
		t.Error("exception must be absent without an error")
	}

	ts, ok := rec["timestamp"].(string)
	if !ok {
		t.Fatalf("timestamp missing: %v", rec)
	}
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		t.Fatalf("timestamp is not ISO-8601: %v", err)
	}
	if !strings.HasSuffix(ts, "Z") || parsed.Location() != time.UTC {
		t.Errorf("timestamp should be UTC, got %s", ts)
	}
}

func TestLevelNames(t *testing.T) {
	tests := []struct {
		level    zerolog.Level
		expected string
	}{
		{zerolog.DebugLevel, "DEBUG"},
		{zerolog.InfoLevel, "INFO"},
		{zerolog.WarnLevel, "WARNING"},
		{zerolog.ErrorLevel, "ERROR"},
		{zerolog.FatalLevel, "CRITICAL"},
	}

	for _, tt := range tests {
		if got := levelName(tt.level); got != tt.expected {
			t.Errorf("levelName(%v) = %s, want %s", tt.level, got, tt.expected)
		}
	}
}

var errRoot = errors.New("connection refused")

func failingQuery() error {
	return fmt.Errorf("failed to increment hits: %w", errRoot)
}

func TestExceptionField(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	logger.Error().Err(failingQuery()).Msg("Error updating hits")

	rec := decodeLine(t, bytes.TrimSpace(buf.Bytes()))
	exc, ok := rec["exception"].(string)
	if !ok {
		t.Fatalf("expected exception field, got %v", rec)
	}
	if !strings.HasPrefix(exc, "failed to increment hits: connection refused\ncaused by: connection refused") {
		t.Errorf("unexpected error chain: %q", exc)
	}
	if !strings.Contains(exc, "TestExceptionField") {
		t.Errorf("expected call site in stack, got %q", exc)
	}
	if strings.Contains(exc, "github.com/rs/zerolog") {
		t.Errorf("stack should not include logger internals: %q", exc)
	}
	if rec["level"] != "ERROR" {
		t.Errorf("expected level ERROR, got %v", rec["level"])
	}
}

func TestShortFunction(t *testing.T) {
	tests := map[string]string{
		"github.com/dsjohal14/hitlog/internal/http.(*Handler).HandleStatus":      "(*Handler).HandleStatus",
		"github.com/dsjohal14/hitlog/internal/traffic.GenerateText":              "GenerateText",
		"main.main":                                                              "main",
		"github.com/dsjohal14/hitlog/internal/libs/jobs.(*Supervisor).Go.func1": "(*Supervisor).Go.func1",
	}
	for in, want := range tests {
		if got := shortFunction(in); got != want {
			t.Errorf("shortFunction(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestConcurrentLinesStayIntact(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				logger.Info().Int("worker", n).Msg(strings.Repeat("x", 200))
			}
		}(i)
	}
	wg.Wait()

	scanner := bufio.NewScanner(&buf)
	lines := 0
	for scanner.Scan() {
		decodeLine(t, scanner.Bytes())
		lines++
	}
	if lines != 400 {
		t.Errorf("expected 400 lines, got %d", lines)
	}
}
