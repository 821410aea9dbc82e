package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestStatusRemaining(t *testing.T) {
	s := NewStatus(nil, 24*time.Hour, zap.NewNop())

	t.Run("fresh record keeps the full retention horizon", func(t *testing.T) {
		got := s.remaining(time.Now())
		assert.InDelta(t, 24*time.Hour, got, float64(2*time.Second))
	})

	t.Run("re-cache of an old record only gets what is left of the horizon", func(t *testing.T) {
		got := s.remaining(time.Now().Add(-23 * time.Hour))
		assert.InDelta(t, time.Hour, got, float64(2*time.Second))
	})

	t.Run("record past the horizon never enters the cache", func(t *testing.T) {
		createdAt := time.Now().Add(-25 * time.Hour)
		assert.LessOrEqual(t, s.remaining(createdAt), time.Duration(0))
		// Set retorna antes de tocar o Redis (client nil não é usado)
		assert.NotPanics(t, func() {
			s.Set(context.Background(), "abc-1", "success", createdAt)
		})
	})
}
