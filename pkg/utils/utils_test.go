package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStableJSON(t *testing.T) {
	t.Run("Mapas equivalentes serializam de forma idêntica", func(t *testing.T) {
		a := map[string]any{"geo": "BR", "age_min": 18}
		b := map[string]any{"age_min": 18, "geo": "BR"}

		assert.Equal(t, StableJSON(a), StableJSON(b))
	})

	t.Run("Números inteiros não carregam casa decimal", func(t *testing.T) {
		assert.Equal(t, "50", StableJSON(50.0))
	})

	t.Run("Nil serializa como vazio", func(t *testing.T) {
		assert.Equal(t, "", StableJSON(nil))
	})
}

func TestJSONEquals(t *testing.T) {
	assert.True(t, JSONEquals(map[string]any{"a": 1}, map[string]any{"a": 1.0}))
	assert.True(t, JSONEquals(nil, nil))
	assert.False(t, JSONEquals(map[string]any{"a": 1}, map[string]any{"a": 2}))
}

func TestTruncateToDay(t *testing.T) {
	truncated := TruncateToDay(time.Date(2025, 6, 15, 14, 30, 45, 123, time.UTC))
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), truncated)
}

func TestDateRange(t *testing.T) {
	t.Run("Intervalo inclusivo de três dias", func(t *testing.T) {
		start := time.Date(2025, 6, 13, 10, 0, 0, 0, time.UTC)
		end := time.Date(2025, 6, 15, 2, 0, 0, 0, time.UTC)

		dates := DateRange(start, end)

		assert.Len(t, dates, 3)
		assert.Equal(t, time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC), dates[0])
		assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), dates[2])
	})

	t.Run("Início e fim no mesmo dia retorna um único dia", func(t *testing.T) {
		day := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
		assert.Len(t, DateRange(day, day), 1)
	})
}

func TestRoundWithTwoDecimalPlace(t *testing.T) {
	assert.Equal(t, 3.33, RoundWithTwoDecimalPlace(10.0/3.0))
	assert.Equal(t, 0.0, RoundWithTwoDecimalPlace(0))
	assert.Equal(t, 25.0, RoundWithTwoDecimalPlace(25.0))
}
