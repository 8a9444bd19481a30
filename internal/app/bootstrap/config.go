// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/applytrack/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for ApplyTrack.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: APPLYTRACK_MONGO_URI, APPLYTRACK_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "applytrack", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "applytrack-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime (e.g., 24h, 720h)"},
	{Name: "csrf_key", Default: "dev-only-csrf-key-change-me-0123", Desc: "CSRF authentication key (32 bytes)"},

	// Attachment storage
	{Name: "storage_type", Default: StorageLocal, Desc: "Resume storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads/resumes", Desc: "Local storage path for resumes"},
	{Name: "storage_s3_endpoint", Default: "", Desc: "S3-compatible endpoint (host[:port])"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_access_key", Default: "", Desc: "S3 access key"},
	{Name: "storage_s3_secret_key", Default: "", Desc: "S3 secret key"},
	{Name: "storage_s3_use_ssl", Default: true, Desc: "Use TLS for the S3 endpoint"},
	{Name: "storage_signed_url_ttl", Default: "15m", Desc: "Lifetime of resume download links"},

	// Redis (optional)
	{Name: "redis_addr", Default: "", Desc: "Redis address for shared change events and rate limits (blank disables)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},

	// Login throttling
	{Name: "login_rate_ip", Default: "10/1m", Desc: "Login attempts allowed per client IP"},
	{Name: "login_rate_email", Default: "5/5m", Desc: "Login attempts allowed per email"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges with precedence
// flags > env (APPLYTRACK_*) > config files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "APPLYTRACK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 30*24*time.Hour),
		CSRFKey:          appValues.String("csrf_key"),

		StorageType:         appValues.String("storage_type"),
		StorageLocalPath:    appValues.String("storage_local_path"),
		StorageS3Endpoint:   appValues.String("storage_s3_endpoint"),
		StorageS3Bucket:     appValues.String("storage_s3_bucket"),
		StorageS3AccessKey:  appValues.String("storage_s3_access_key"),
		StorageS3SecretKey:  appValues.String("storage_s3_secret_key"),
		StorageS3UseSSL:     appValues.Bool("storage_s3_use_ssl"),
		StorageSignedURLTTL: appValues.Duration("storage_signed_url_ttl", 15*time.Minute),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),

		LoginRateIP:    appValues.String("login_rate_ip"),
		LoginRateEmail: appValues.String("login_rate_email"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Problems are caught here, before any connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database is required")
	}
	if len(appCfg.CSRFKey) != 32 {
		return fmt.Errorf("csrf_key must be exactly 32 bytes, got %d", len(appCfg.CSRFKey))
	}

	switch appCfg.StorageType {
	case StorageLocal:
		if appCfg.StorageLocalPath == "" {
			return fmt.Errorf("storage_local_path is required for local storage")
		}
	case StorageS3:
		if appCfg.StorageS3Endpoint == "" || appCfg.StorageS3Bucket == "" {
			return fmt.Errorf("storage_s3_endpoint and storage_s3_bucket are required for s3 storage")
		}
	default:
		return fmt.Errorf("storage_type must be %q or %q, got %q", StorageLocal, StorageS3, appCfg.StorageType)
	}

	if _, err := ratelimit.ParseRate(appCfg.LoginRateIP); err != nil {
		return fmt.Errorf("login_rate_ip: %w", err)
	}
	if _, err := ratelimit.ParseRate(appCfg.LoginRateEmail); err != nil {
		return fmt.Errorf("login_rate_email: %w", err)
	}

	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.SessionKey == "dev-only-change-me-please-0123456789ABCDEF" {
		return fmt.Errorf("session_key must be changed in production")
	}
	return nil
}
