package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	runctx "github.com/va6996/flightfinder/context"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Init("debug")
	SetOutput(&buf)
	t.Cleanup(func() {
		Init("info")
		SetOutput(logrus.StandardLogger().Out)
	})
	return &buf
}

func TestFormat_IncludesRunID(t *testing.T) {
	buf := captureOutput(t)

	ctx := runctx.WithRunID(context.Background(), "abc-123")
	Infof(ctx, "looking up %s", "Paris")

	out := buf.String()
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "looking up Paris")
	assert.Contains(t, out, "[run:abc-123]")
	assert.Contains(t, out, "log_test.go")
}

func TestFormat_NoRunID(t *testing.T) {
	buf := captureOutput(t)

	Warnf(context.Background(), "plain message")

	out := buf.String()
	assert.Contains(t, out, "[WARNING] ")
	assert.NotContains(t, out, "[run:")
}

func TestFormat_ExtraFieldsSorted(t *testing.T) {
	buf := captureOutput(t)

	WithField(context.Background(), "tool", "lookup_airport").WithField("attempt", 1).Info("step")

	assert.Contains(t, buf.String(), "step attempt=1 tool=lookup_airport")
}

func TestInit_UnknownLevel(t *testing.T) {
	Init("chatty")
	assert.Equal(t, logrus.InfoLevel, Logger.GetLevel())
}
