// Package firebase initialises the Firebase Admin app that backs the
// Firestore store, ID token verification and Storage uploads.
package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Config selects the Firebase project
type Config struct {
	ProjectID       string
	CredentialsPath string // empty uses application default credentials
	StorageBucket   string
}

// App wraps the Admin SDK app
type App struct {
	app *firebase.App
	cfg Config
}

func NewApp(ctx context.Context, cfg Config) (*App, error) {
	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	return &App{app: app, cfg: cfg}, nil
}

// Firestore returns a Firestore client; the caller closes it
func (a *App) Firestore(ctx context.Context) (*firestore.Client, error) {
	client, err := a.app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firestore client: %w", err)
	}
	return client, nil
}

// Auth returns the Auth client used to verify ID tokens
func (a *App) Auth(ctx context.Context) (*auth.Client, error) {
	client, err := a.app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firebase Auth client: %w", err)
	}
	return client, nil
}

// Bucket returns the configured Storage bucket
func (a *App) Bucket(ctx context.Context) (*gcs.BucketHandle, error) {
	client, err := a.app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firebase Storage client: %w", err)
	}
	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %q: %w", a.cfg.StorageBucket, err)
	}
	return bucket, nil
}

// BucketName is the configured Storage bucket name
func (a *App) BucketName() string { return a.cfg.StorageBucket }
