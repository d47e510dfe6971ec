package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestProperty_ProductionLogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)
	encoderConfig := buildConfig("production").EncoderConfig

	properties.Property("production entries are JSON with message and fields", prop.ForAll(
		func(message string, slot string, count int) bool {
			var buf bytes.Buffer
			core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(&buf), zapcore.DebugLevel)
			log := zap.New(core).With(zap.String("service", ServiceName))

			log.Info(message, zap.String("slot", slot), zap.Int("count", count))
			log.Sync()

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				return false
			}

			return entry["msg"] == message &&
				entry["level"] == "info" &&
				entry["service"] == ServiceName &&
				entry["slot"] == slot &&
				entry["count"] == float64(count) &&
				entry["timestamp"] != nil
		},
		gen.AlphaString(),
		gen.OneConstOf("assets.json", "redis:homekeeper:assets", "postgres:homekeeper_tasks"),
		gen.IntRange(0, 10000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestBuildConfig(t *testing.T) {
	prod := buildConfig("production")
	if prod.Encoding != "json" {
		t.Errorf("Expected json encoding in production, got %s", prod.Encoding)
	}
	if prod.Level.Level() != zapcore.InfoLevel {
		t.Errorf("Expected info level in production, got %s", prod.Level.Level())
	}

	dev := buildConfig("development")
	if dev.Encoding != "console" {
		t.Errorf("Expected console encoding in development, got %s", dev.Encoding)
	}
	if dev.Level.Level() != zapcore.DebugLevel {
		t.Errorf("Expected debug level in development, got %s", dev.Level.Level())
	}
	if len(dev.OutputPaths) != 1 || dev.OutputPaths[0] != "stdout" {
		t.Errorf("Expected stdout output, got %v", dev.OutputPaths)
	}
}

func TestNewLevelOverride(t *testing.T) {
	log, err := New("production", "warn")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("Expected info to be disabled at warn level")
	}
	if !log.Core().Enabled(zapcore.WarnLevel) {
		t.Error("Expected warn to be enabled")
	}

	if _, err := New("production", "loud"); err == nil {
		t.Error("Expected an invalid level to be rejected")
	}
}
