package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/asalih/go-msgcfb"
)

var (
	verbose    bool
	validation string
	configFile string

	cfg *Config
)

var rootCmd = &cobra.Command{
	Use:   "mscfb",
	Short: "Inspect compound files and Outlook messages",
	Long: `mscfb is a read-only inspector for Compound File Binary containers
such as Outlook .msg files.

Commands:
  info     Header, DIFAT, FAT and MiniFAT summaries
  tree     Directory tree
  cat      Raw content of a stream
  props    Decoded properties of a message, recipient or attachment
  named    Named property tables`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := LoadConfig(configFile, cmd.Flags())
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log decoding warnings to stderr")
	rootCmd.PersistentFlags().StringVar(&validation, "validation", "strict", "validation mode (strict, permissive)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./mscfb.yaml)")

	rootCmd.AddCommand(infoCmd, treeCmd, catCmd, propsCmd, namedCmd)
}

func newLogger(c *Config) *slog.Logger {
	level := slog.LevelWarn
	if c.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openFile(path string) (*mscfb.CompoundFile, error) {
	opts := []mscfb.Option{
		mscfb.WithValidation(mscfb.ParseValidation(cfg.Validation)),
	}
	if cfg.Verbose {
		opts = append(opts, mscfb.WithLogger(newLogger(cfg)))
	}
	return mscfb.Open(path, opts...)
}
