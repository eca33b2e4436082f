// Screwctl is the control panel for a screwdriver controller.
//
// It drives the controller's torque and speed over a serial link and keeps
// a list of per-screw presets that can be imported from and exported to
// spreadsheets.
//
// Usage:
//
//	screwctl [command] [flags]
//
// Running without arguments launches the interactive panel.
// See 'screwctl --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/screwctl/internal/config"
	"github.com/muurk/screwctl/internal/devicelink"
	"github.com/muurk/screwctl/internal/logging"
	"github.com/muurk/screwctl/internal/session"
	"github.com/muurk/screwctl/internal/tui"
	"github.com/muurk/screwctl/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	configPath string
	logLevel   string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "screwctl",
	Short: "Screwdriver Torque and Speed Control Panel",
	Long: `A control panel for a screwdriver controller attached over a serial port.

Sets the live torque and speed, keeps a list of per-screw presets and
imports or exports that list as xlsx, csv, json or yaml.

If no command is specified, the interactive panel will launch automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the panel when no subcommand provided
		return runPanel(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file (default is the user config directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when empty")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of the terminal")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("screwctl %s (commit: %s)\n", version.Version, version.Commit)
	},
}

// loadSettings reads the settings named by --config and reports any
// invalid fields.
func loadSettings() (*config.Settings, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// initLogging starts the logger. The panel owns the terminal, so when a
// level is requested without a file the log goes next to the settings.
func initLogging(interactive bool) {
	output := logFile
	if interactive && output == "" && (logLevel != "" || os.Getenv(logging.LogLevelEnvVar) != "") && os.Getenv(logging.LogFileEnvVar) == "" {
		if dir, err := config.GetConfigDir(); err == nil && os.MkdirAll(dir, 0o755) == nil {
			output = filepath.Join(dir, "screwctl.log")
		}
	}
	if err := logging.InitializeWithOutput(logLevel, output); err != nil {
		// Ignore error, GetLogger will create fallback logger
		_ = err
	}
}

func runPanel(cmd *cobra.Command, args []string) error {
	initLogging(true)
	defer logging.Sync()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed := tui.NewFeed()
	link := devicelink.New(settings.Serial, devicelink.WithHandler(feed.Received))
	link.OnStatus(feed.Status)
	defer link.Close()

	s := session.New(settings, link)
	if err := tui.Run(ctx, s, tui.Options{Feed: feed}); err != nil {
		return fmt.Errorf("panel error: %w", err)
	}
	return nil
}
