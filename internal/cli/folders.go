package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"filevault/internal/models"
)

func newMkdirCmd(app *App) *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "mkdir <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := app.identity()
			if err != nil {
				return err
			}
			if err := app.open(cmd.Context()); err != nil {
				return err
			}

			folder, err := app.folders.Create(cmd.Context(), identity.UserID, args[0], folderRef(parentID))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created folder %s (%s)\n", folder.Name, folder.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "parent folder id (default: vault root)")
	return cmd
}

func newLsCmd(app *App) *cobra.Command {
	var folderID string

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List folders and files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := app.identity()
			if err != nil {
				return err
			}
			if err := app.open(cmd.Context()); err != nil {
				return err
			}

			ctx := cmd.Context()
			ref := folderRef(folderID)

			path, err := app.folders.ResolvePath(ctx, ref)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "/%s\n", breadcrumb(path))

			subfolders, err := app.folders.ListChildren(ctx, identity.UserID, ref)
			if err != nil {
				return err
			}
			fileList, err := app.files.List(ctx, identity.UserID, ref)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, f := range subfolders {
				count, err := app.folders.CountFiles(ctx, identity.UserID, &f.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "d\t%s\t%s\t%d files\n", f.ID, f.Name, count)
			}
			for _, f := range fileList {
				fmt.Fprintf(w, "-\t%s\t%s\t%d\t%s\n", f.ID, f.Name, f.Size, f.MimeType)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&folderID, "folder", "", "folder id to list (default: vault root)")
	return cmd
}

func newRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <folder-id> <new-name>",
		Short: "Rename a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.identity(); err != nil {
				return err
			}
			if err := app.open(cmd.Context()); err != nil {
				return err
			}

			folder, err := app.folders.Rename(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Renamed to %s\n", folder.Name)
			return nil
		},
	}
}

func newRmdirCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rmdir <folder-id>",
		Short: "Delete a folder and everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.identity(); err != nil {
				return err
			}
			if err := app.open(cmd.Context()); err != nil {
				return err
			}

			if err := app.folders.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
			return nil
		},
	}
}

func newMvdirCmd(app *App) *cobra.Command {
	var newParentID string

	cmd := &cobra.Command{
		Use:   "mvdir <folder-id>",
		Short: "Move a folder under another parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.identity(); err != nil {
				return err
			}
			if err := app.open(cmd.Context()); err != nil {
				return err
			}

			folder, err := app.folders.Move(cmd.Context(), args[0], folderRef(newParentID))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s\n", folder.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&newParentID, "to", "", "new parent folder id (default: vault root)")
	return cmd
}

func newPathCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path <folder-id>",
		Short: "Show a folder's breadcrumb path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.identity(); err != nil {
				return err
			}
			if err := app.open(cmd.Context()); err != nil {
				return err
			}

			path, err := app.folders.ResolvePath(cmd.Context(), folderRef(args[0]))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "/%s\n", breadcrumb(path))
			return nil
		},
	}
}

// breadcrumb renders a root-to-leaf folder chain as "Docs / 2024 / Q1".
func breadcrumb(path []*models.Folder) string {
	names := make([]string, 0, len(path))
	for _, f := range path {
		names = append(names, f.Name)
	}
	return strings.Join(names, " / ")
}
