package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies CASELEDGER_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known CASELEDGER_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Supabase ──
	setStr(&cfg.Supabase.DSN, "CASELEDGER_SUPABASE_DSN")
	setStr(&cfg.Supabase.Host, "CASELEDGER_SUPABASE_HOST")
	setInt(&cfg.Supabase.Port, "CASELEDGER_SUPABASE_PORT")
	setStr(&cfg.Supabase.Database, "CASELEDGER_SUPABASE_DATABASE")
	setStr(&cfg.Supabase.User, "CASELEDGER_SUPABASE_USER")
	setStr(&cfg.Supabase.Password, "CASELEDGER_SUPABASE_PASSWORD")
	setStr(&cfg.Supabase.SSLMode, "CASELEDGER_SUPABASE_SSL_MODE")
	setInt(&cfg.Supabase.PoolMaxConns, "CASELEDGER_SUPABASE_POOL_MAX_CONNS")
	setInt(&cfg.Supabase.PoolMinConns, "CASELEDGER_SUPABASE_POOL_MIN_CONNS")
	setBool(&cfg.Supabase.RunMigrations, "CASELEDGER_SUPABASE_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "CASELEDGER_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "CASELEDGER_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "CASELEDGER_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "CASELEDGER_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "CASELEDGER_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "CASELEDGER_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "CASELEDGER_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "CASELEDGER_S3_REGION")
	setStr(&cfg.S3.Bucket, "CASELEDGER_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "CASELEDGER_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "CASELEDGER_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "CASELEDGER_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "CASELEDGER_S3_FORCE_PATH_STYLE")

	// ── Server ──
	setInt(&cfg.Server.Port, "CASELEDGER_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "CASELEDGER_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "CASELEDGER_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimitPerMin, "CASELEDGER_SERVER_RATE_LIMIT_PER_MIN")
	setInt64(&cfg.Server.MaxUploadBytes, "CASELEDGER_SERVER_MAX_UPLOAD_BYTES")

	// ── Worker ──
	setDuration(&cfg.Worker.DeadlineScanInterval, "CASELEDGER_WORKER_DEADLINE_SCAN_INTERVAL")
	setDuration(&cfg.Worker.DashboardRefresh, "CASELEDGER_WORKER_DASHBOARD_REFRESH")
	setInt(&cfg.Worker.AuditRetentionDays, "CASELEDGER_WORKER_AUDIT_RETENTION_DAYS")
	setDuration(&cfg.Worker.AuditArchiveInterval, "CASELEDGER_WORKER_AUDIT_ARCHIVE_INTERVAL")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "CASELEDGER_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "CASELEDGER_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "CASELEDGER_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "CASELEDGER_NOTIFY_EVENTS")

	// ── Dashboard ──
	setDuration(&cfg.Dashboard.CacheTTL, "CASELEDGER_DASHBOARD_CACHE_TTL")

	// ── Top-level ──
	setStr(&cfg.Mode, "CASELEDGER_MODE")
	setStr(&cfg.LogLevel, "CASELEDGER_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
