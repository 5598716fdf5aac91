package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                   string
	AppEnv                    string
	AppPort                   string
	Timezone                  *time.Location
	DatabaseURL               string
	RedisURL                  string
	NATSURL                   string
	EventChannel              string
	JWTSecret                 string
	DashboardCacheTTL         time.Duration
	LeaderboardCacheTTL       time.Duration
	LeaderboardPageSize       int
	LeaderboardReconcileEvery time.Duration
	QuizXP                    int
	AssignmentXP              int
	StreakBonusXP             int
	StreakMilestone           int
	ReferralUnlockThreshold   int
	SubmissionRateLimit       int
	SubmissionRateLimitWindow time.Duration
	SeedEnabled               bool
	SeedToken                 string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LMS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA LMS API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("events.channel", "lms")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("leaderboard.cache_ttl", "1m")
	v.SetDefault("leaderboard.page_size", 20)
	v.SetDefault("leaderboard.reconcile_interval", "15m")
	v.SetDefault("gamification.quiz_xp", 50)
	v.SetDefault("gamification.assignment_xp", 50)
	v.SetDefault("gamification.streak_bonus_xp", 100)
	v.SetDefault("gamification.streak_milestone", 7)
	v.SetDefault("referral.unlock_threshold", 3)
	v.SetDefault("ratelimit.submissions", 10)
	v.SetDefault("ratelimit.window", "1m")
	v.SetDefault("seed.enabled", false)

	dashboardTTL, err := parseDuration(v, "dashboard.cache_ttl", "5m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	leaderboardTTL, err := parseDuration(v, "leaderboard.cache_ttl", "1m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid leaderboard cache ttl: %w", err)
	}

	reconcileEvery, err := parseDuration(v, "leaderboard.reconcile_interval", "15m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid leaderboard reconcile interval: %w", err)
	}

	rateWindow, err := parseDuration(v, "ratelimit.window", "1m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid rate limit window: %w", err)
	}

	location, err := time.LoadLocation(v.GetString("app.timezone"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid timezone: %w", err)
	}

	cfg := Config{
		AppName:                   v.GetString("app.name"),
		AppEnv:                    v.GetString("app.env"),
		AppPort:                   v.GetString("app.port"),
		Timezone:                  location,
		DatabaseURL:               v.GetString("database.url"),
		RedisURL:                  v.GetString("redis.url"),
		NATSURL:                   v.GetString("nats.url"),
		EventChannel:              v.GetString("events.channel"),
		JWTSecret:                 v.GetString("jwt.secret"),
		DashboardCacheTTL:         dashboardTTL,
		LeaderboardCacheTTL:       leaderboardTTL,
		LeaderboardPageSize:       v.GetInt("leaderboard.page_size"),
		LeaderboardReconcileEvery: reconcileEvery,
		QuizXP:                    v.GetInt("gamification.quiz_xp"),
		AssignmentXP:              v.GetInt("gamification.assignment_xp"),
		StreakBonusXP:             v.GetInt("gamification.streak_bonus_xp"),
		StreakMilestone:           v.GetInt("gamification.streak_milestone"),
		ReferralUnlockThreshold:   v.GetInt("referral.unlock_threshold"),
		SubmissionRateLimit:       v.GetInt("ratelimit.submissions"),
		SubmissionRateLimitWindow: rateWindow,
		SeedEnabled:               v.GetBool("seed.enabled"),
		SeedToken:                 v.GetString("seed.token"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.LeaderboardPageSize <= 0 {
		cfg.LeaderboardPageSize = 20
	}

	if cfg.StreakMilestone <= 0 {
		cfg.StreakMilestone = 7
	}

	if cfg.ReferralUnlockThreshold <= 0 {
		cfg.ReferralUnlockThreshold = 3
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key, fallback string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		raw = fallback
	}
	return time.ParseDuration(raw)
}
