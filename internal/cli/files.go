package cli

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"filevault/internal/services"
)

func newUploadCmd(app *App) *cobra.Command {
	var folderID string

	cmd := &cobra.Command{
		Use:   "upload <local-file>",
		Short: "Encrypt and upload a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := app.identity()
			if err != nil {
				return err
			}
			if err := app.open(cmd.Context()); err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			name := filepath.Base(args[0])

			meta, err := app.files.Upload(cmd.Context(), services.UploadInput{
				Identity: *identity,
				Name:     name,
				MimeType: detectMimeType(name, data),
				Data:     data,
				FolderID: folderRef(folderID),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%s)\n", meta.Name, meta.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&folderID, "folder", "", "destination folder id (default: vault root)")
	return cmd
}

func newDownloadCmd(app *App) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "download <file-id>",
		Short: "Download and decrypt a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := app.identity()
			if err != nil {
				return err
			}
			if err := app.open(cmd.Context()); err != nil {
				return err
			}

			ctx := cmd.Context()
			meta, err := app.files.Get(ctx, args[0], identity.UserID)
			if err != nil {
				return err
			}

			result, err := app.files.Download(ctx, meta, *identity)
			if err != nil {
				return err
			}

			dest := outPath
			if dest == "" {
				dest = result.Name
			}
			if err := os.WriteFile(dest, result.Data, 0600); err != nil {
				return fmt.Errorf("writing %s: %w", dest, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s (%s, %d bytes)\n", dest, result.MimeType, len(result.Data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default: original file name)")
	return cmd
}

func newMvCmd(app *App) *cobra.Command {
	var folderID string

	cmd := &cobra.Command{
		Use:   "mv <file-id>",
		Short: "Move a file to another folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := app.identity()
			if err != nil {
				return err
			}
			if err := app.open(cmd.Context()); err != nil {
				return err
			}

			ctx := cmd.Context()
			if _, err := app.files.Get(ctx, args[0], identity.UserID); err != nil {
				return err
			}

			meta, err := app.files.Move(ctx, args[0], folderRef(folderID))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s\n", meta.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&folderID, "to", "", "destination folder id (default: vault root)")
	return cmd
}

func newRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <file-id>",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := app.identity()
			if err != nil {
				return err
			}
			if err := app.open(cmd.Context()); err != nil {
				return err
			}

			ctx := cmd.Context()
			meta, err := app.files.Get(ctx, args[0], identity.UserID)
			if err != nil {
				return err
			}

			if err := app.files.Delete(ctx, meta); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", meta.Name)
			return nil
		},
	}
}

// detectMimeType guesses the original MIME type from the file extension,
// falling back to content sniffing. Recorded in metadata; the encrypted blob
// itself is always stored as application/octet-stream.
func detectMimeType(name string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}
