package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_Trace(t *testing.T) {
	sql := func() (string, int64) { return "SELECT * FROM products", 6 }

	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		elapsed time.Duration
		err     error
		wantMsg string
	}{
		{"error is logged", gormlogger.Error, 0, errors.New("disk full"), "SQL error"},
		{"not found is ignored", gormlogger.Info, 0, gormlogger.ErrRecordNotFound, ""},
		{"slow query warns", gormlogger.Warn, time.Second, nil, "Slow SQL"},
		{"info level traces", gormlogger.Info, 0, nil, "SQL"},
		{"silent logs nothing", gormlogger.Silent, time.Second, errors.New("x"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			gl := NewGormLogger(zap.New(core), tt.level, 100*time.Millisecond)

			gl.Trace(WithRequestID(context.Background(), "req-7"), time.Now().Add(-tt.elapsed), sql, tt.err)

			if tt.wantMsg == "" {
				assert.Zero(t, recorded.Len())
				return
			}
			entries := recorded.FilterMessage(tt.wantMsg).All()
			if assert.Len(t, entries, 1) {
				assert.Equal(t, "req-7", entries[0].ContextMap()["request_id"])
			}
		})
	}
}

func TestGormLogger_LogModeClones(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Info, 0)
	warn := gl.LogMode(gormlogger.Warn).(*GormLogger)

	assert.Equal(t, gormlogger.Info, gl.level)
	assert.Equal(t, gormlogger.Warn, warn.level)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("unknown"))
}
