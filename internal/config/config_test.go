package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LMS_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "GEMA LMS API", cfg.AppName)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, time.UTC, cfg.Timezone)
	require.Equal(t, 5*time.Minute, cfg.DashboardCacheTTL)
	require.Equal(t, time.Minute, cfg.LeaderboardCacheTTL)
	require.Equal(t, 15*time.Minute, cfg.LeaderboardReconcileEvery)
	require.Equal(t, 20, cfg.LeaderboardPageSize)
	require.Equal(t, 50, cfg.QuizXP)
	require.Equal(t, 50, cfg.AssignmentXP)
	require.Equal(t, 100, cfg.StreakBonusXP)
	require.Equal(t, 7, cfg.StreakMilestone)
	require.Equal(t, 3, cfg.ReferralUnlockThreshold)
	require.False(t, cfg.SeedEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LMS_JWT_SECRET", "secret")
	t.Setenv("LMS_APP_PORT", ":9090")
	t.Setenv("LMS_APP_TIMEZONE", "Asia/Jakarta")
	t.Setenv("LMS_GAMIFICATION_QUIZ_XP", "75")
	t.Setenv("LMS_GAMIFICATION_STREAK_MILESTONE", "0")
	t.Setenv("LMS_LEADERBOARD_CACHE_TTL", "30s")
	t.Setenv("LMS_SEED_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, "Asia/Jakarta", cfg.Timezone.String())
	require.Equal(t, 75, cfg.QuizXP)
	require.Equal(t, 7, cfg.StreakMilestone)
	require.Equal(t, 30*time.Second, cfg.LeaderboardCacheTTL)
	require.True(t, cfg.SeedEnabled)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("LMS_JWT_SECRET", "")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("LMS_JWT_SECRET", "secret")
		t.Setenv("LMS_DASHBOARD_CACHE_TTL", "soon")
		_, err := Load()
		require.ErrorContains(t, err, "dashboard cache ttl")
	})

	t.Run("bad timezone", func(t *testing.T) {
		t.Setenv("LMS_JWT_SECRET", "secret")
		t.Setenv("LMS_APP_TIMEZONE", "Mars/Olympus")
		_, err := Load()
		require.ErrorContains(t, err, "invalid timezone")
	})
}
