package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jask/convolens/internal/config"
	"github.com/jask/convolens/internal/database"
	"github.com/jask/convolens/internal/database/repository"
	"github.com/jask/convolens/internal/logging"
	"github.com/jask/convolens/internal/service"
)

// env is built once in PersistentPreRunE and shared by every command.
type env struct {
	cfg       config.Config
	log       *slog.Logger
	logCloser io.Closer
	db        *sql.DB
}

func (e *env) transcripts() *service.TranscriptService {
	return &service.TranscriptService{
		Conversations: repository.NewConversationRepo(e.db),
		Messages:      repository.NewMessageRepo(e.db),
		Analyses:      repository.NewAnalysisRepo(e.db),
		Location:      e.cfg.Location(),
		DateFormat:    e.cfg.UI.DateFormat,
	}
}

func (e *env) importer() *service.ImportService {
	return &service.ImportService{DB: e.db}
}

func (e *env) close() {
	if e.db != nil {
		_ = e.db.Close()
	}
	if e.logCloser != nil {
		_ = e.logCloser.Close()
	}
}

var app = &env{}

var rootCmd = &cobra.Command{
	Use:           "convolens",
	Short:         "Read a conversation next to its analysis",
	Long:          "convolens shows a conversation transcript and its per-message analysis side by side.\nScrolling either pane keeps the other on the same message.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return app.setup()
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		app.close()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return viewCmd.RunE(cmd, args)
	},
}

func (e *env) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	e.log, e.logCloser = logger, closer

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir db dir: %w", err)
	}
	db, err := database.Open(cfg.Database.Driver, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	e.db = db
	if err := database.RunMigrations(db, cfg.Database.Driver); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	e.log.Info("database ready", "path", cfg.Database.Path, "driver", cfg.Database.Driver)
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		app.close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
