// Package cli implements the vault command tree.
package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"filevault/internal/auth"
	"filevault/internal/blobstore"
	"filevault/internal/config"
	"filevault/internal/cryptox"
	"filevault/internal/logging"
	"filevault/internal/models"
	"filevault/internal/repositories/repomanager"
	"filevault/internal/services"
)

// App wires configuration, logging and services for one command invocation.
type App struct {
	cfg *config.Config
	log logging.Logger

	db      *sql.DB
	folders *services.FolderService
	files   *services.FileService
	users   *services.UserService
}

// Execute runs the vault CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree. Configuration is loaded in the
// persistent pre-run so every subcommand sees the same config and logger.
func NewRootCmd() *cobra.Command {
	app := &App{}
	var configPath string

	root := &cobra.Command{
		Use:           "vault",
		Short:         "Encrypted file vault",
		Long:          "vault stores files encrypted client-side, organized into nested folders.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			app.cfg = cfg
			app.log = logging.NewFileLogger(cfg.LogFile)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.close()
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to JSON config file")

	root.AddCommand(
		newRegisterCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newMkdirCmd(app),
		newLsCmd(app),
		newRenameCmd(app),
		newRmdirCmd(app),
		newMvdirCmd(app),
		newPathCmd(app),
		newUploadCmd(app),
		newDownloadCmd(app),
		newMvCmd(app),
		newRmCmd(app),
	)

	return root
}

// open connects to the metadata store, runs migrations and builds the
// services. Commands that only touch the session file never call it.
func (a *App) open(ctx context.Context) error {
	if a.db != nil {
		return nil
	}

	db, err := sql.Open("pgx", a.cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("opening metadata store: %w", err)
	}

	manager := repomanager.NewPostgresRepositoryManager()
	if err := manager.RunMigrations(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("running migrations: %w", err)
	}

	blobs, err := blobstore.New(ctx, a.cfg)
	if err != nil {
		db.Close()
		return err
	}

	codec, err := cryptox.NewCodec(a.cfg.EncryptionMode)
	if err != nil {
		db.Close()
		return err
	}

	a.db = db
	a.folders = services.NewFolderServiceTx(db, manager, a.log)
	a.files = services.NewFileService(manager.Files(db), blobs, codec, a.log)
	a.users = services.NewUserService(manager.Users(db), []byte(a.cfg.SecretKey), a.cfg.SessionValidityDuration, a.log)
	return nil
}

func (a *App) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// identity loads the active session and returns the identity pair carried in
// its token.
func (a *App) identity() (*models.Identity, error) {
	token, err := auth.LoadSession(a.cfg.SessionFile)
	if err != nil {
		return nil, err
	}
	return auth.ParseToken(token, []byte(a.cfg.SecretKey))
}

// folderRef maps a CLI folder argument to the repositories' nullable id:
// the empty string addresses the vault root.
func folderRef(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
