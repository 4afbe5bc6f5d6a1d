// Package bootstrap wires configuration into running components. Every
// binary builds its store, identity verifier and uploader here, once.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/supermall/internal/auth"
	"github.com/example/supermall/internal/config"
	"github.com/example/supermall/internal/infrastructure/firebase"
	"github.com/example/supermall/internal/infrastructure/objectstore"
	"github.com/example/supermall/internal/infrastructure/store"
	"go.uber.org/zap"
)

// Resources are the long-lived handles shared by one process
type Resources struct {
	Store    store.DocumentStore
	Firebase *firebase.App

	closers []func() error
}

// Open connects the configured store backend, and the Firebase Admin app
// when any component needs it.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Resources, error) {
	res := &Resources{}

	if cfg.UsesFirebase() {
		app, err := firebase.NewApp(ctx, firebase.Config{
			ProjectID:       cfg.FirebaseProjectID,
			CredentialsPath: cfg.FirebaseCredentialsPath,
			StorageBucket:   cfg.FirebaseStorageBucket,
		})
		if err != nil {
			return nil, err
		}
		res.Firebase = app
	}

	st, err := res.openStore(ctx, cfg)
	if err != nil {
		_ = res.Close()
		return nil, err
	}
	res.Store = st

	logger.Info("store opened", zap.String("backend", cfg.StoreBackend))
	return res, nil
}

func (r *Resources) openStore(ctx context.Context, cfg *config.Config) (store.DocumentStore, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil

	case config.BackendPostgres:
		db, err := store.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, db.Close)
		pg := store.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return pg, nil

	case config.BackendFirestore:
		client, err := r.Firebase.Firestore(ctx)
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, client.Close)
		return store.NewFirestoreStore(client), nil

	case config.BackendMongo:
		client, err := store.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, func() error { return client.Disconnect(context.Background()) })
		return store.NewMongoStore(client.Database(cfg.MongoDatabase)), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

// Verifier builds the configured identity verifier
func (r *Resources) Verifier(ctx context.Context, cfg *config.Config) (auth.Verifier, error) {
	if cfg.AuthProvider == config.AuthFirebase {
		client, err := r.Firebase.Auth(ctx)
		if err != nil {
			return nil, err
		}
		return auth.NewFirebaseVerifier(client), nil
	}
	return auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry()), nil
}

// Uploader builds the configured object store. The in-process store is
// also returned as an http.Handler so the API can serve its files.
func (r *Resources) Uploader(ctx context.Context, cfg *config.Config) (objectstore.Uploader, *objectstore.Memory, error) {
	if cfg.ObjectStore == config.ObjectsFirebase {
		bucket, err := r.Firebase.Bucket(ctx)
		if err != nil {
			return nil, nil, err
		}
		return objectstore.NewFirebaseStorage(bucket, r.Firebase.BucketName()), nil, nil
	}
	mem := objectstore.NewMemory(cfg.PublicBaseURL + "/uploads")
	return mem, mem, nil
}

// Close releases every handle in reverse order of opening
func (r *Resources) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	r.closers = nil
	return errors.Join(errs...)
}
