package di

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"

	apperrors "github.com/cancianpiero/deployvars/internal/errors"
	"github.com/cancianpiero/deployvars/internal/policy"
	snapstore "github.com/cancianpiero/deployvars/internal/store"
	"github.com/cancianpiero/deployvars/internal/workspace"
)

func ProvideContext() context.Context {
	return context.Background()
}

func ProvideSettings() (*workspace.Settings, error) {
	return workspace.LoadSettings()
}

func ProvidePolicyValidator(skip SkipRegionCheck) (*policy.Validator, error) {
	if skip {
		return policy.NewValidator(policy.WithoutRegionCheck())
	}
	return policy.NewValidator()
}

func ProvideStorageClient(ctx context.Context) (*storage.Client, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return client, nil
}

func ProvideSnapshotStore(client *storage.Client, bucket Bucket, prefix Prefix) (*snapstore.SnapshotStore, error) {
	if bucket == "" {
		return nil, apperrors.ErrBucketRequired
	}
	objectPrefix := string(prefix)
	if objectPrefix == "" {
		objectPrefix = workspace.DefaultSnapshotPrefix
	}
	return snapstore.New(client, string(bucket), objectPrefix), nil
}
