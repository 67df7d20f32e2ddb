package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"mission-tracker/internal/constants"
)

type Config struct {
	MissionsURL  string
	DBPath       string
	ServerPort   string
	LogLevel     string
	DiscordToken string
	GuildID      string
	GeminiAPIKey string
	SnapshotTTL  time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		MissionsURL:  getEnv("MISSIONS_URL", "https://pmc250.com/datos_misiones_historico.json"),
		DBPath:       getEnv("DB_PATH", "tracker.db"),
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DiscordToken: getEnv("DISCORD_TOKEN", ""),
		GuildID:      getEnv("GUILD_ID", ""),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		SnapshotTTL:  constants.SnapshotTTL,
	}

	// Discord and Gemini are optional upstreams; without credentials their
	// sources serve empty data instead of failing.
	if cfg.DiscordToken == "" || cfg.GuildID == "" {
		logger.Warn().Msg("DISCORD_TOKEN or GUILD_ID not set, roster will be empty")
	}
	if cfg.GeminiAPIKey == "" {
		logger.Warn().Msg("GEMINI_API_KEY not set, mission intel parsing disabled")
	}

	logger.Info().
		Str("missions_url", cfg.MissionsURL).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("snapshot_ttl", cfg.SnapshotTTL).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
