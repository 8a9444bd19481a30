package bootstrap

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/applytrack/internal/app/system/changefeed"
	"github.com/dalemusser/applytrack/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:         "mongodb://localhost:27017",
		MongoDatabase:    "applytrack_test",
		SessionKey:       "0123456789abcdef0123456789abcdef-session",
		SessionMaxAge:    24 * time.Hour,
		CSRFKey:          "0123456789abcdef0123456789abcdef",
		StorageType:      StorageLocal,
		StorageLocalPath: "./uploads",
		LoginRateIP:      "10/1m",
		LoginRateEmail:   "5/5m",
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{name: "valid local", mutate: func(*AppConfig) {}},
		{name: "valid s3", mutate: func(c *AppConfig) {
			c.StorageType = StorageS3
			c.StorageS3Endpoint = "localhost:9000"
			c.StorageS3Bucket = "resumes"
		}},
		{name: "bad mongo uri", mutate: func(c *AppConfig) { c.MongoURI = "postgres://nope" }, wantErr: "MongoDB URI"},
		{name: "missing database", mutate: func(c *AppConfig) { c.MongoDatabase = "" }, wantErr: "mongo_database"},
		{name: "short csrf key", mutate: func(c *AppConfig) { c.CSRFKey = "short" }, wantErr: "csrf_key"},
		{name: "unknown storage", mutate: func(c *AppConfig) { c.StorageType = "ftp" }, wantErr: "storage_type"},
		{name: "s3 without bucket", mutate: func(c *AppConfig) {
			c.StorageType = StorageS3
			c.StorageS3Endpoint = "localhost:9000"
		}, wantErr: "storage_s3_bucket"},
		{name: "bad ip rate", mutate: func(c *AppConfig) { c.LoginRateIP = "ten per minute" }, wantErr: "login_rate_ip"},
		{name: "dev session key in prod", env: "prod", mutate: func(c *AppConfig) {
			c.SessionKey = "dev-only-change-me-please-0123456789ABCDEF"
		}, wantErr: "session_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			core := &config.CoreConfig{Env: tt.env}

			err := ValidateConfig(core, cfg, testLogger())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestFileTokenKey(t *testing.T) {
	k1 := fileTokenKey("session-key-a")
	k2 := fileTokenKey("session-key-b")

	if len(k1) != 32 {
		t.Fatalf("key length: got %d, want 32", len(k1))
	}
	if string(k1) == string(k2) {
		t.Error("different session keys must give different token keys")
	}
	if string(k1) == "session-key-a" {
		t.Error("token key must not be the raw session key")
	}
}

func TestEnsureSchema_CreatesIndexesIdempotently(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(ctx, nil, AppConfig{}, deps, testLogger()); err != nil {
			t.Fatalf("EnsureSchema run %d: %v", i+1, err)
		}
	}

	cur, err := db.Collection("applications").Indexes().List(ctx)
	if err != nil {
		t.Fatalf("list indexes: %v", err)
	}
	var specs []bson.M
	if err := cur.All(ctx, &specs); err != nil {
		t.Fatalf("decode indexes: %v", err)
	}
	if len(specs) < 2 {
		t.Errorf("expected application indexes beyond _id, got %d", len(specs))
	}
}

func TestHealthChecks(t *testing.T) {
	if got := healthChecks(DBDeps{Notifier: changefeed.NewHub()}); len(got) != 0 {
		t.Errorf("in-process hub needs no health check, got %v", got)
	}
}

func TestNotifierOrHub_FallsBackToHub(t *testing.T) {
	n := notifierOrHub(DBDeps{})
	if _, ok := n.(*changefeed.Hub); !ok {
		t.Fatalf("expected *changefeed.Hub, got %T", n)
	}
}

func TestShutdown_EmptyDeps(t *testing.T) {
	if err := Shutdown(context.Background(), nil, AppConfig{}, DBDeps{}, testLogger()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
