package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"Trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv(LevelEnv, "error")
	if got := LevelFromEnv(); got != zerolog.ErrorLevel {
		t.Errorf("LevelFromEnv() = %v, want error", got)
	}
}

func TestNew_TraceEnabled(t *testing.T) {
	var buf bytes.Buffer
	traceLog := New(&buf, ParseLevel("trace"))
	traceLog.Trace().Msg("raw line")
	if !strings.Contains(buf.String(), "raw line") {
		t.Errorf("trace message not written at trace level: %q", buf.String())
	}

	buf.Reset()
	debugLog := New(&buf, ParseLevel("debug"))
	debugLog.Trace().Msg("raw line")
	if buf.Len() != 0 {
		t.Errorf("trace message written at debug level: %q", buf.String())
	}
}

func TestNew_FiltersAndTags(t *testing.T) {
	var buf bytes.Buffer
	log := Component(New(&buf, zerolog.WarnLevel), "server")

	log.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info written at warn level: %s", buf.String())
	}

	log.Warn().Str("tool", "image_canny").Msg("tool failed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v: %s", err, buf.String())
	}
	if entry["component"] != "server" {
		t.Errorf("component = %v, want server", entry["component"])
	}
	if entry["tool"] != "image_canny" {
		t.Errorf("tool = %v, want image_canny", entry["tool"])
	}
	if entry["level"] != "warn" {
		t.Errorf("level = %v, want warn", entry["level"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("missing timestamp")
	}
}
