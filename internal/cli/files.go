package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/storecms/internal/service"
	"github.com/me/storecms/internal/storage"
)

func newFilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Upload and remove console assets",
	}

	var (
		folder string
		bucket string
		dryRun bool
	)
	upload := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image and print its public URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := objectStore(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			objectPath := storage.ObjectPath(folder, filepath.Base(args[0]))
			contentType := mime.TypeByExtension(filepath.Ext(args[0]))
			d, err := store.Upload(cmd.Context(), bucketOr(bucket), objectPath, f, contentType)
			if err != nil {
				return fmt.Errorf("upload %s: %w", args[0], err)
			}
			logger.Info("uploaded", "bucket", d.Bucket, "path", d.Path, "size", d.Size, "dry_run", dryRun)
			return result(cmd, d, "Uploaded %s (%s)\n%s", d.Path, humanize.Bytes(uint64(d.Size)), d.PublicURL)
		},
	}
	upload.Flags().StringVar(&folder, "folder", "", "Folder inside the bucket, e.g. products")
	upload.Flags().StringVar(&bucket, "bucket", "", "Bucket (default from config)")
	upload.Flags().BoolVar(&dryRun, "dry-run", false, "Keep the upload in memory instead of the storage project")

	var removeBucket string
	remove := &cobra.Command{
		Use:   "remove <path>",
		Short: "Remove an object from the storage bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := objectStore(cmd.Context(), false)
			if err != nil {
				return err
			}
			removed, err := store.Remove(cmd.Context(), bucketOr(removeBucket), args[0])
			if err != nil {
				return fmt.Errorf("remove %s: %w", args[0], err)
			}
			if !removed {
				return fmt.Errorf("remove %s: object not found", args[0])
			}
			return result(cmd, map[string]any{"removed": args[0]}, "Removed %s", args[0])
		},
	}
	remove.Flags().StringVar(&removeBucket, "bucket", "", "Bucket (default from config)")

	del := needsAPI(&cobra.Command{
		Use:   "delete <path>",
		Short: "Ask the backend to delete a stored file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := service.NewFiles(deps()).Delete(cmd.Context(), args[0])
			if err != nil {
				return callErr("delete file", err)
			}
			if !ok {
				return fmt.Errorf("delete file %s: not deleted", args[0])
			}
			return result(cmd, map[string]any{"deleted": args[0]}, "Deleted %s", args[0])
		},
	})

	cmd.AddCommand(upload, remove, del)
	return cmd
}

func objectStore(ctx context.Context, dryRun bool) (storage.ObjectStore, error) {
	if dryRun {
		return storage.NewMemoryStore(cfg.Storage.ProjectURL), nil
	}
	if !cfg.Storage.Configured() {
		return nil, fmt.Errorf("no storage project configured: set storage.project_url and access keys, or STORECMS_STORAGE_* env")
	}
	return storage.NewS3Store(ctx, cfg.Storage, logger)
}

func bucketOr(b string) string {
	if b != "" {
		return b
	}
	return cfg.Storage.Bucket
}
