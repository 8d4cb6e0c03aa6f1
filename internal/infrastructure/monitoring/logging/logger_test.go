package logging_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/medmuse/medmuse-backend/internal/infrastructure/monitoring/logging"
)

func TestFieldConstructors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, logging.Field{Key: "k", Value: "v"}, logging.String("k", "v"))
	assert.Equal(t, logging.Field{Key: "n", Value: 7}, logging.Int("n", 7))
	assert.Equal(t, logging.Field{Key: "d", Value: time.Second}, logging.Duration("d", time.Second))

	err := errors.New("boom")
	f := logging.Err(err)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, err, f.Value)

	nilField := logging.Err(nil)
	assert.Equal(t, "error", nilField.Key)
	assert.Equal(t, "<nil>", nilField.Value)
}

func TestZapLogger_EmitsStructuredFields(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.DebugLevel)
	log := logging.NewLoggerFromCore(core)

	log.Info("report persisted",
		logging.Int64("report_id", 42),
		logging.String("provider", "openai"),
	)

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "report persisted", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, int64(42), fields["report_id"])
	assert.Equal(t, "openai", fields["provider"])
}

func TestZapLogger_WithAddsPersistentFields(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.DebugLevel)
	log := logging.NewLoggerFromCore(core).With(logging.String("component", "render-queue"))

	log.Warn("render failed")
	log.Error("render failed again")

	entries := observed.All()
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "render-queue", e.ContextMap()["component"])
	}
}

func TestNewLogger_DefaultsAreValid(t *testing.T) {
	t.Parallel()

	log, err := logging.NewLogger(logging.Config{})
	require.NoError(t, err)
	require.NotNil(t, log)
	log.Info("smoke")
}

func TestNopLogger_NeverPanics(t *testing.T) {
	t.Parallel()

	log := logging.NewNopLogger()
	log.Debug("a")
	log.Info("b", logging.Int("x", 1))
	log.Warn("c")
	log.Error("d", logging.Err(errors.New("e")))
	log.With(logging.String("k", "v")).Named("child").Info("f")
}
