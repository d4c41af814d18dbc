package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/cancianpiero/deployvars/internal/di"
	"github.com/cancianpiero/deployvars/internal/store"
	"github.com/cancianpiero/deployvars/internal/workspace"
)

// SnapshotCommand returns the snapshot command group for versioned variable
// file storage
func SnapshotCommand(logger *zerolog.Logger) *cli.Command {
	bucketFlag := &cli.StringFlag{
		Name:    "bucket",
		Aliases: []string{"b"},
		Usage:   "Snapshot bucket name",
		EnvVars: []string{"DEPLOYVARS_BUCKET"},
	}
	prefixFlag := &cli.StringFlag{
		Name:    "prefix",
		Aliases: []string{"p"},
		Usage:   "Object prefix inside the bucket",
		EnvVars: []string{"DEPLOYVARS_PREFIX"},
	}

	return &cli.Command{
		Name:  "snapshot",
		Usage: "Store and retrieve versioned copies of variable files",
		Description: `Keep versioned snapshots of variable files in a bucket, one object per
snapshot under {prefix}/{env}/{id}.tfvars. Snapshot ids sort by creation
time. Bucket and prefix come from flags, DEPLOYVARS_* variables, or the
snapshots section of ` + workspace.ManifestName + `.`,
		Subcommands: []*cli.Command{
			{
				Name:      "push",
				Usage:     "Validate and upload a variable file",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					envFlag(),
					bucketFlag,
					prefixFlag,
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Upload even when validation fails",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Show what would be uploaded without uploading it",
					},
				},
				Action: snapshotPushAction,
			},
			{
				Name:  "pull",
				Usage: "Fetch a snapshot's contents",
				Flags: []cli.Flag{
					envFlag(),
					bucketFlag,
					prefixFlag,
					&cli.StringFlag{
						Name:    "id",
						Aliases: []string{"i"},
						Usage:   "Snapshot id (defaults to the latest)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				},
				Action: snapshotPullAction,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List snapshots for an environment, newest first",
				Flags: []cli.Flag{
					envFlag(),
					bucketFlag,
					prefixFlag,
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
				},
				Action: snapshotListAction,
			},
		},
	}
}

// snapshotStore builds the store from flags, environment, and manifest.
func snapshotStore(c *cli.Context, ws *workspace.Workspace, env string) (*store.SnapshotStore, error) {
	bucket := c.String("bucket")
	if bucket == "" {
		bucket = ws.Bucket()
	}
	prefix := c.String("prefix")
	if prefix == "" {
		prefix = ws.Prefix()
	}

	container, err := di.New(env, di.WithBucket(bucket), di.WithPrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to build container: %w", err)
	}

	var snapshots *store.SnapshotStore
	if err := container.Invoke(func(s *store.SnapshotStore) { snapshots = s }); err != nil {
		return nil, fmt.Errorf("failed to initialize snapshot store: %w", err)
	}
	return snapshots, nil
}

func snapshotPushAction(c *cli.Context) error {
	logger := zerolog.Ctx(c.Context)

	path, ws, err := resolveFile(c)
	if err != nil {
		return err
	}
	env := envName(c, ws)

	problems, err := checkFile(c.Context, path, false)
	if err != nil {
		return err
	}
	if len(problems) > 0 {
		for _, problem := range problems {
			logger.Warn().Str("key", problem.Key).Msg(problem.Detail)
		}
		if !c.Bool("force") {
			return fmt.Errorf("refusing to push %s with %d validation problem(s), use --force to override", path, len(problems))
		}
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if c.Bool("dry-run") {
		bucket := c.String("bucket")
		if bucket == "" {
			bucket = ws.Bucket()
		}
		prefix := c.String("prefix")
		if prefix == "" {
			prefix = ws.Prefix()
		}
		fmt.Printf("DRY RUN: would upload %s (%d bytes) to gs://%s/%s/%s/\n", path, len(contents), bucket, prefix, env)
		return nil
	}

	snapshots, err := snapshotStore(c, ws, env)
	if err != nil {
		return err
	}
	snapshot, err := snapshots.Push(c.Context, env, contents, path)
	if err != nil {
		return err
	}

	logger.Info().
		Str("id", snapshot.ID).
		Str("object", snapshot.Object).
		Str("sha256", snapshot.SHA256).
		Msg("Snapshot pushed")
	fmt.Printf("✓ Pushed snapshot %s\n", snapshot.ID)
	return nil
}

func snapshotPullAction(c *cli.Context) error {
	logger := zerolog.Ctx(c.Context)

	ws, err := workspace.Load()
	if err != nil {
		return err
	}
	env := envName(c, ws)

	snapshots, err := snapshotStore(c, ws, env)
	if err != nil {
		return err
	}
	contents, snapshot, err := snapshots.Pull(c.Context, env, c.String("id"))
	if err != nil {
		return err
	}

	if output := c.String("output"); output != "" {
		if err := os.WriteFile(output, contents, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
		logger.Info().
			Str("id", snapshot.ID).
			Str("file", output).
			Msg("Snapshot pulled")
		return nil
	}
	fmt.Print(string(contents))
	return nil
}

func snapshotListAction(c *cli.Context) error {
	ws, err := workspace.Load()
	if err != nil {
		return err
	}
	env := envName(c, ws)

	snapshots, err := snapshotStore(c, ws, env)
	if err != nil {
		return err
	}
	list, err := snapshots.List(c.Context, env)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		out, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal snapshots: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	if len(list) == 0 {
		fmt.Printf("No snapshots for environment: %s\n", env)
		return nil
	}
	fmt.Printf("%-28s %-20s %10s  %s\n", "ID", "CREATED", "SIZE", "SOURCE")
	for _, snapshot := range list {
		fmt.Printf("%-28s %-20s %10d  %s\n",
			snapshot.ID,
			snapshot.Created.Format(time.RFC3339),
			snapshot.Size,
			snapshot.Source)
	}
	return nil
}
