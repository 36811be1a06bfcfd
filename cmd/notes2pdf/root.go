package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	dbPath     string

	cfg = defaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "notes2pdf",
	Short: "Export rich notes from a NoteStore database into portable documents",
	Long: `notes2pdf decodes the compressed rich-text blobs of an Apple-Notes-style
NoteStore.sqlite database and exports them as markdown, HTML, or a single
portable bundle file. Tables, checklists, nested lists, code blocks and
inline styles are preserved.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		if configPath != "" {
			loaded, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			cfg = cfg.merge(loaded)
		}
		if dbPath != "" {
			cfg.Database = dbPath
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a yaml config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "database", "", "Path to NoteStore.sqlite")
}
