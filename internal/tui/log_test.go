package tui

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap/zaptest"
)

func testLogger(t *testing.T) logr.Logger {
	return zapr.NewLogger(zaptest.NewLogger(t))
}
