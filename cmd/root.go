package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
	dbPath  string
	wide    bool
)

var rootCmd = &cobra.Command{
	Use:   "notebook",
	Short: "Transcribe, summarize and question audio recordings and documents",
	Long: `Notebook keeps a library of audio recordings and documents. Each source is
transcribed and summarized (audio) or has its text extracted (document) once;
results are cached in SQLite and reused across runs. Questions about a source
are answered by a QA backend and a chat model, and the relevant sentences are
highlighted in every view of the source.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default $NOTEBOOK_DB or ./notebook.db)")
	rootCmd.PersistentFlags().BoolVar(&wide, "wide", false, "also split sentences on full-width 。！？")
}
