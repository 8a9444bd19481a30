// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	applicationstore "github.com/dalemusser/applytrack/internal/app/store/applications"
	"github.com/dalemusser/applytrack/internal/app/system/attachments"
	"github.com/dalemusser/applytrack/internal/app/system/changefeed"
	"github.com/dalemusser/applytrack/internal/app/system/indexes"
	"github.com/dalemusser/applytrack/internal/app/system/metrics"
	"github.com/dalemusser/applytrack/internal/app/system/ratelimit"
	"github.com/dalemusser/applytrack/internal/app/system/timeouts"
	"github.com/dalemusser/applytrack/internal/app/system/validators"
	"github.com/dalemusser/applytrack/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectDB opens MongoDB, the optional Redis client and the attachment
// backend, and builds the notifier and login limiter on top of them.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	timeouts.ConfigureFromEnv()

	var deps DBDeps

	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	connectCtx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return deps, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return deps, fmt.Errorf("mongo ping: %w", err)
	}
	deps.MongoClient = client
	deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	if appCfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     appCfg.RedisAddr,
			Password: appCfg.RedisPassword,
			DB:       appCfg.RedisDB,
		})
		if err := rdb.Ping(connectCtx).Err(); err != nil {
			_ = rdb.Close()
			_ = client.Disconnect(context.Background())
			return deps, fmt.Errorf("redis ping: %w", err)
		}
		deps.Redis = rdb
		logger.Info("connected to Redis", zap.String("addr", appCfg.RedisAddr))
	}

	if err := connectFiles(connectCtx, appCfg, &deps, logger); err != nil {
		closeDeps(&deps, logger)
		return DBDeps{}, err
	}

	ipRate, _ := ratelimit.ParseRate(appCfg.LoginRateIP)
	emailRate, _ := ratelimit.ParseRate(appCfg.LoginRateEmail)
	if deps.Redis != nil {
		deps.Notifier = changefeed.NewRedis(deps.Redis, logger)
		deps.LoginLimiter = ratelimit.NewRedisLoginLimiter(deps.Redis, ipRate, emailRate)
	} else {
		deps.Notifier = changefeed.NewHub()
		deps.LoginLimiter = ratelimit.NewLoginLimiter(ipRate, emailRate)
	}

	deps.TotalsWorker = workers.NewStoredTotals(
		applicationstore.New(deps.MongoDatabase, logger),
		func(status string, n float64) { metrics.ApplicationsStored.WithLabelValues(status).Set(n) },
		logger, time.Minute)

	return deps, nil
}

func connectFiles(ctx context.Context, appCfg AppConfig, deps *DBDeps, logger *zap.Logger) error {
	switch appCfg.StorageType {
	case StorageS3:
		s3, err := attachments.NewS3(ctx, attachments.S3Config{
			Endpoint:  appCfg.StorageS3Endpoint,
			Bucket:    appCfg.StorageS3Bucket,
			AccessKey: appCfg.StorageS3AccessKey,
			SecretKey: appCfg.StorageS3SecretKey,
			UseSSL:    appCfg.StorageS3UseSSL,
		})
		if err != nil {
			return err
		}
		deps.Files, deps.S3Files = s3, s3
		logger.Info("resume storage: s3", zap.String("bucket", appCfg.StorageS3Bucket))
	default:
		local, err := attachments.NewLocalDir(appCfg.StorageLocalPath, fileTokenKey(appCfg.SessionKey), "/files")
		if err != nil {
			return err
		}
		deps.Files, deps.LocalFiles = local, local
		logger.Info("resume storage: local", zap.String("path", appCfg.StorageLocalPath))
	}
	return nil
}

// fileTokenKey derives the download-token signing key from the session key,
// so the two never share raw key material.
func fileTokenKey(sessionKey string) []byte {
	sum := sha256.Sum256([]byte("applytrack/attachments:" + sessionKey))
	return sum[:]
}

// EnsureSchema attaches collection validators and creates the indexes every
// query relies on.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ictx, cancel := context.WithTimeout(ctx, timeouts.Batch())
	defer cancel()
	if err := validators.EnsureAll(ictx, deps.MongoDatabase, logger); err != nil {
		logger.Error("ensure validators failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ictx, deps.MongoDatabase); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	logger.Info("indexes ensured")
	return nil
}
