// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging, CORS, body limits); this
// struct is everything specific to ApplyTrack.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: applytrack-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// CSRFKey authenticates form posts; 32 bytes.
	CSRFKey string

	// Attachment storage
	StorageType         string // "local" or "s3"
	StorageLocalPath    string // directory for local resumes
	StorageS3Endpoint   string // host[:port] of an S3-compatible service
	StorageS3Bucket     string
	StorageS3AccessKey  string
	StorageS3SecretKey  string
	StorageS3UseSSL     bool
	StorageSignedURLTTL time.Duration // lifetime of resume download links

	// Redis is optional. When RedisAddr is set, change events and login
	// rate limits are shared across instances through it.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Login throttling, "N/duration" (e.g. "10/1m").
	LoginRateIP    string
	LoginRateEmail string
}

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)
