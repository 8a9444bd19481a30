package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dalemusser/applytrack/internal/app/system/timeouts"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type globalOpts struct {
	mongoURI string
	database string
	verbose  bool
}

func newRootCmd() *cobra.Command {
	g := &globalOpts{}

	root := &cobra.Command{
		Use:           "applytrackctl",
		Short:         "Operate an ApplyTrack deployment",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.mongoURI, "mongo-uri", envOr("APPLYTRACK_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	root.PersistentFlags().StringVar(&g.database, "mongo-database", envOr("APPLYTRACK_MONGO_DATABASE", "applytrack"), "MongoDB database name")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(newStatsCmd(g), newUsersCmd(g))
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (g *globalOpts) logger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !g.verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// connect opens the database; the returned func disconnects.
func (g *globalOpts) connect(ctx context.Context) (*mongo.Database, func(), error) {
	cctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(g.mongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect %s: %w", g.mongoURI, err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping %s: %w", g.mongoURI, err)
	}
	return client.Database(g.database), func() { _ = client.Disconnect(context.Background()) }, nil
}
