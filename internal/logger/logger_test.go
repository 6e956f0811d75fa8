package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLogger_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelInfo, &buf)

	tests := []struct {
		name    string
		level   Level
		message string
		fields  Fields
		err     error
		want    bool // should log
	}{
		{
			name:    "info message",
			level:   LevelInfo,
			message: "cache loaded",
			fields:  Fields{"events": 12},
			want:    true,
		},
		{
			name:    "debug below threshold",
			level:   LevelDebug,
			message: "cache check",
			want:    false,
		},
		{
			name:    "error with err",
			level:   LevelError,
			message: "extraction failed",
			err:     errors.New("status 500"),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := buf.Len()
			logger.log(tt.level, tt.message, tt.fields, tt.err)
			logged := buf.Len() > before

			if logged != tt.want {
				t.Errorf("log() logged = %v, want %v", logged, tt.want)
			}
		})
	}
}

func TestLogger_EntryShape(t *testing.T) {
	var buf bytes.Buffer
	New(LevelDebug, &buf).Error("save failed", Fields{"file": "cache_jogos.json"}, errors.New("disk full"))

	var entry LogEntry
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("Unmarshal() error = %v (line %q)", err, buf.String())
	}

	if entry.Level != "ERROR" {
		t.Errorf("Level = %q, want ERROR", entry.Level)
	}
	if entry.Message != "save failed" {
		t.Errorf("Message = %q, want %q", entry.Message, "save failed")
	}
	if entry.Error != "disk full" {
		t.Errorf("Error = %q, want %q", entry.Error, "disk full")
	}
	if entry.Fields["file"] != "cache_jogos.json" {
		t.Errorf("Fields[file] = %v, want cache_jogos.json", entry.Fields["file"])
	}
	if _, err := time.Parse(time.RFC3339, entry.Timestamp); err != nil {
		t.Errorf("Timestamp %q is not RFC3339: %v", entry.Timestamp, err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input  string
		want   Level
		wantOK bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{" warn ", LevelWarn, true},
		{"warning", LevelWarn, true},
		{"Error", LevelError, true},
		{"verbose", LevelInfo, false},
		{"", LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLevel(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		minLevel  Level
		logLevel  Level
		shouldLog bool
	}{
		{"debug logs at debug", LevelDebug, LevelDebug, true},
		{"info logs at debug", LevelDebug, LevelInfo, true},
		{"debug doesn't log at info", LevelInfo, LevelDebug, false},
		{"warn doesn't log at error", LevelError, LevelWarn, false},
		{"error always logs", LevelDebug, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(tt.minLevel, &buf).log(tt.logLevel, "test", nil, nil)

			if logged := buf.Len() > 0; logged != tt.shouldLog {
				t.Errorf("shouldLog = %v, want %v", logged, tt.shouldLog)
			}
		})
	}
}

func TestSetDefault(t *testing.T) {
	var buf bytes.Buffer
	previous := defaultLogger
	SetDefault(New(LevelWarn, &buf))
	defer SetDefault(previous)

	Info("hidden", nil)
	Warn("visible", Fields{"credential": "1/2"})

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("INFO line written below WARN threshold: %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("WARN line missing: %s", out)
	}
}

func TestMetrics_Counter(t *testing.T) {
	m := NewMetrics()

	m.IncrCounter("firecrawl.calls")
	m.IncrCounter("firecrawl.calls")
	m.IncrCounter("firecrawl.calls")

	counters := m.GetSnapshot()["counters"].(map[string]int64)
	if counters["firecrawl.calls"] != 3 {
		t.Errorf("Counter = %v, want 3", counters["firecrawl.calls"])
	}
}

func TestMetrics_Gauge(t *testing.T) {
	m := NewMetrics()

	m.SetGauge("cache.events", 10)
	m.SetGauge("cache.events", 38)

	gauges := m.GetSnapshot()["gauges"].(map[string]float64)
	if gauges["cache.events"] != 38 {
		t.Errorf("Gauge = %v, want 38", gauges["cache.events"])
	}
}

func TestMetrics_Timing(t *testing.T) {
	m := NewMetrics()

	m.RecordTiming("firecrawl.extract", 100*time.Millisecond)
	m.RecordTiming("firecrawl.extract", 200*time.Millisecond)
	m.RecordTiming("firecrawl.extract", 150*time.Millisecond)

	timings := m.GetSnapshot()["timings"].(map[string]map[string]interface{})
	extract := timings["firecrawl.extract"]

	if extract["count"].(int) != 3 {
		t.Errorf("Timing count = %v, want 3", extract["count"])
	}
	if extract["min"].(string) != "100ms" {
		t.Errorf("Min timing = %v, want 100ms", extract["min"])
	}
	if extract["max"].(string) != "200ms" {
		t.Errorf("Max timing = %v, want 200ms", extract["max"])
	}
	if extract["average"].(string) != "150ms" {
		t.Errorf("Average timing = %v, want 150ms", extract["average"])
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	previous := defaultLogger
	SetDefault(New(LevelDebug, &buf))
	defer SetDefault(previous)

	Debug("test debug", nil)
	Info("test info", Fields{"key": "value"})
	Warn("test warning", nil)
	Error("test error", Fields{"component": "test"}, errors.New("test"))

	if lines := strings.Count(buf.String(), "\n"); lines != 4 {
		t.Errorf("wrote %d lines, want 4", lines)
	}

	IncrCounter("test")
	SetGauge("test", 42.0)
	RecordTiming("test", time.Second)

	if snapshot := GetMetricsSnapshot(); snapshot == nil {
		t.Error("GetMetricsSnapshot() returned nil")
	}
}
