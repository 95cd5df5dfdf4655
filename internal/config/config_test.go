package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultSurveyDuration, cfg.SurveyDuration)
	assert.Equal(t, time.Second, cfg.TimerTick)
	assert.False(t, cfg.CasdoorEnabled())
}

func TestGetDurationSeconds(t *testing.T) {
	t.Run("valid value", func(t *testing.T) {
		t.Setenv("TEST_DURATION", "300")
		assert.Equal(t, 5*time.Minute, getDurationSeconds("TEST_DURATION", DefaultSurveyDuration))
	})

	t.Run("malformed value falls back", func(t *testing.T) {
		t.Setenv("TEST_DURATION", "five minutes")
		assert.Equal(t, DefaultSurveyDuration, getDurationSeconds("TEST_DURATION", DefaultSurveyDuration))
	})

	t.Run("non-positive value falls back", func(t *testing.T) {
		t.Setenv("TEST_DURATION", "-10")
		assert.Equal(t, DefaultSurveyDuration, getDurationSeconds("TEST_DURATION", DefaultSurveyDuration))
	})

	t.Run("missing value falls back", func(t *testing.T) {
		assert.Equal(t, DefaultSurveyDuration, getDurationSeconds("TEST_DURATION_MISSING", DefaultSurveyDuration))
	})
}
