package db

import (
	"context"
	"fmt"
	"time"

	"k8s.io/klog/v2"

	"standardthought/pkg/config"
)

// Open connects the backend selected in cfg. The returned func releases it.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, func(), error) {
	store, closeFn, err := open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Migrate {
		if err := store.EnsureSchema(ctx); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
	}

	klog.Infof("database backend %q ready", cfg.Backend)
	return store, closeFn, nil
}

func open(ctx context.Context, cfg config.DatabaseConfig) (Store, func(), error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		client := NewPostgresClient(PostgresConfig{DSN: cfg.DSN, MaxConns: cfg.MaxConns})
		if err := client.Connect(ctx); err != nil {
			return nil, nil, err
		}
		return client, func() { _ = client.Close() }, nil

	case config.BackendSupabase:
		client := NewSupabaseClient(SupabaseConfig{
			ConnectionString: cfg.DSN,
			SupabaseURL:      cfg.SupabaseURL,
			SupabaseKey:      cfg.SupabaseKey,
			Password:         cfg.SupabasePassword,
			MaxConns:         cfg.MaxConns,
		})
		if err := client.Connect(ctx); err != nil {
			return nil, nil, err
		}
		if !client.HasDirectDB() {
			klog.Infof("supabase: REST mode")
		}
		return client, func() { _ = client.Close() }, nil

	case config.BackendMongo:
		client := NewMongoClient(cfg.MongoURI, cfg.MongoDatabase)
		if err := client.Connect(ctx); err != nil {
			return nil, nil, err
		}
		return client, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Close(ctx); err != nil {
				klog.Warningf("mongo disconnect: %v", err)
			}
		}, nil

	case config.BackendSQLite, config.BackendMySQL:
		client, err := OpenGorm(cfg.Backend, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return client, func() { _ = client.Close() }, nil
	}

	return nil, nil, fmt.Errorf("unsupported database backend: %q", cfg.Backend)
}
