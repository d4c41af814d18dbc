// Package store keeps versioned snapshots of variable files in a GCS
// bucket. It stores the files themselves; it never provisions anything.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"time"

	"cloud.google.com/go/storage"
	"github.com/segmentio/ksuid"
	"google.golang.org/api/iterator"

	apperrors "github.com/cancianpiero/deployvars/internal/errors"
)

// Snapshot describes one stored version of a variable file.
type Snapshot struct {
	ID      string    `json:"id"`
	Env     string    `json:"env"`
	Object  string    `json:"object"`
	Source  string    `json:"source,omitempty"`
	SHA256  string    `json:"sha256"`
	Size    int64     `json:"size"`
	Created time.Time `json:"created"`
}

// SnapshotStore reads and writes snapshots under {prefix}/{env}/{id}.tfvars.
type SnapshotStore struct {
	bucket *storage.BucketHandle
	prefix string
}

// New creates a store against the named bucket and object prefix.
func New(client *storage.Client, bucket, prefix string) *SnapshotStore {
	return &SnapshotStore{
		bucket: client.Bucket(bucket),
		prefix: prefix,
	}
}

// ObjectName returns the object path for a snapshot id. Snapshot ids are
// ksuids, so lexical order is creation order.
func (s *SnapshotStore) ObjectName(env, id string) string {
	return path.Join(s.prefix, env, id+".tfvars")
}

// envPrefix is the listing prefix for one environment.
func (s *SnapshotStore) envPrefix(env string) string {
	return path.Join(s.prefix, env) + "/"
}

// Push uploads contents as a new snapshot for env and returns its metadata.
func (s *SnapshotStore) Push(ctx context.Context, env string, contents []byte, source string) (*Snapshot, error) {
	id := ksuid.New().String()
	sum := sha256.Sum256(contents)
	digest := hex.EncodeToString(sum[:])
	objectName := s.ObjectName(env, id)

	writer := s.bucket.Object(objectName).NewWriter(ctx)
	writer.ContentType = "text/plain"
	writer.Metadata = map[string]string{
		"env":    env,
		"source": source,
		"sha256": digest,
	}
	if _, err := writer.Write(contents); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("failed to write snapshot %s: %w", objectName, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize snapshot %s: %w", objectName, err)
	}

	return &Snapshot{
		ID:      id,
		Env:     env,
		Object:  objectName,
		Source:  source,
		SHA256:  digest,
		Size:    int64(len(contents)),
		Created: time.Now().UTC(),
	}, nil
}

// Pull fetches a snapshot's contents by id, or the latest snapshot for env
// when id is empty.
func (s *SnapshotStore) Pull(ctx context.Context, env, id string) ([]byte, *Snapshot, error) {
	if id == "" {
		latest, err := s.Latest(ctx, env)
		if err != nil {
			return nil, nil, err
		}
		id = latest.ID
	}

	objectName := s.ObjectName(env, id)
	reader, err := s.bucket.Object(objectName).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, nil, fmt.Errorf("%w: %s/%s", apperrors.ErrSnapshotNotFound, env, id)
		}
		return nil, nil, fmt.Errorf("failed to read snapshot %s: %w", objectName, err)
	}
	defer reader.Close()

	contents, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read snapshot %s: %w", objectName, err)
	}

	attrs, err := s.bucket.Object(objectName).Attrs(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get snapshot attributes: %w", err)
	}
	return contents, snapshotFromAttrs(env, id, attrs), nil
}

// List returns the snapshots for env, newest first.
func (s *SnapshotStore) List(ctx context.Context, env string) ([]Snapshot, error) {
	var snapshots []Snapshot
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: s.envPrefix(env)})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", err)
		}
		id := idFromObject(attrs.Name)
		if id == "" {
			continue
		}
		snapshots = append(snapshots, *snapshotFromAttrs(env, id, attrs))
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].ID > snapshots[j].ID
	})
	return snapshots, nil
}

// Latest returns the newest snapshot for env.
func (s *SnapshotStore) Latest(ctx context.Context, env string) (*Snapshot, error) {
	snapshots, err := s.List(ctx, env)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("%w: no snapshots for %s", apperrors.ErrSnapshotNotFound, env)
	}
	return &snapshots[0], nil
}

func snapshotFromAttrs(env, id string, attrs *storage.ObjectAttrs) *Snapshot {
	snapshot := &Snapshot{
		ID:      id,
		Env:     env,
		Object:  attrs.Name,
		Size:    attrs.Size,
		Created: attrs.Created,
	}
	if attrs.Metadata != nil {
		snapshot.Source = attrs.Metadata["source"]
		snapshot.SHA256 = attrs.Metadata["sha256"]
	}
	return snapshot
}

// idFromObject extracts the snapshot id from an object path, empty when the
// object is not a snapshot.
func idFromObject(objectName string) string {
	base := path.Base(objectName)
	const ext = ".tfvars"
	if len(base) <= len(ext) || base[len(base)-len(ext):] != ext {
		return ""
	}
	id := base[:len(base)-len(ext)]
	if _, err := ksuid.Parse(id); err != nil {
		return ""
	}
	return id
}
