package postgres

import (
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoolWait(t *testing.T) {
	prev := sql.DBStats{WaitCount: 10, WaitDuration: time.Second}

	t.Run("no new waits", func(t *testing.T) {
		_, _, ok := poolWait(prev, prev)
		assert.False(t, ok)
	})

	t.Run("short waits are debug", func(t *testing.T) {
		cur := sql.DBStats{WaitCount: 12, WaitDuration: time.Second + 10*time.Millisecond, MaxOpenConnections: 5}
		level, attrs, ok := poolWait(prev, cur)
		assert.True(t, ok)
		assert.Equal(t, slog.LevelDebug, level)
		assert.Equal(t, "avgWait", attrs[2].Key)
		assert.Equal(t, 5*time.Millisecond, attrs[2].Value.Duration())
	})

	t.Run("long waits warn", func(t *testing.T) {
		cur := sql.DBStats{WaitCount: 11, WaitDuration: time.Second + 80*time.Millisecond}
		level, _, ok := poolWait(prev, cur)
		assert.True(t, ok)
		assert.Equal(t, slog.LevelWarn, level)
	})
}
