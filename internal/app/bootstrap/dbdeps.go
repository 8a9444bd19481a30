// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/applytrack/internal/app/system/attachments"
	"github.com/dalemusser/applytrack/internal/app/system/changefeed"
	"github.com/dalemusser/applytrack/internal/app/system/ratelimit"
	"github.com/dalemusser/applytrack/internal/app/system/workers"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Redis is nil when redis_addr is blank.
	Redis *redis.Client

	// Files stores resumes. LocalFiles is set only for the local backend,
	// whose signed links are served by this process.
	Files      attachments.Store
	LocalFiles *attachments.Local
	S3Files    *attachments.S3

	Notifier     changefeed.Notifier
	LoginLimiter *ratelimit.LoginLimiter

	// TotalsWorker refreshes the stored-applications gauge; started in
	// Startup and stopped in Shutdown.
	TotalsWorker *workers.StoredTotals
}
