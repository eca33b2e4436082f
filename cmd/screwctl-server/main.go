// Screwctl-server serves the control panel over HTTP and WebSocket.
//
// It owns the serial link to the screwdriver controller and exposes the
// same panel as the terminal UI as a JSON API with a live state stream.
// The panel can announce itself over mDNS so 'screwctl scan' finds it.
//
// Usage:
//
//	screwctl-server serve [flags]
//
// See 'screwctl-server serve --help' for available options.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/screwctl/internal/config"
	"github.com/muurk/screwctl/internal/devicelink"
	"github.com/muurk/screwctl/internal/discovery"
	"github.com/muurk/screwctl/internal/logging"
	"github.com/muurk/screwctl/internal/server"
	"github.com/muurk/screwctl/internal/session"
	"github.com/muurk/screwctl/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "screwctl-server",
	Short: "Screwctl Remote Panel Server",
	Long: `A standalone HTTP and WebSocket server for the screwdriver control panel.

The server owns the serial link to the controller. Clients read and change
the panel state through a JSON API and receive every change on a WebSocket
stream.

Note: For the terminal panel and file conversion, use the 'screwctl' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	configPath string
	certPath   string
	keyPath    string
	host       string
	port       int
	logLevel   string
	serialPort string
	advertise  bool
	instance   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the panel server",
	Long: `Start the remote panel server.

Host, port and mDNS settings default to the panel section of the settings
file. Provide --cert and --key together to serve HTTPS.`,
	Example: `  # Start with the settings file defaults
  screwctl-server serve

  # Listen on a custom port with debug logging
  screwctl-server serve --port 9090 --log-level debug

  # Serve HTTPS and preselect the serial port
  screwctl-server serve --cert cert.pem --key key.pem --serial /dev/ttyUSB0

  # Do not announce the panel on the network
  screwctl-server serve --advertise=false`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "Settings file (default is the user config directory)")
	serveCmd.Flags().StringVar(&certPath, "cert", "", "Path to TLS certificate file (optional)")
	serveCmd.Flags().StringVar(&keyPath, "key", "", "Path to TLS private key file (optional)")
	serveCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", 8080, "Listen port")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&serialPort, "serial", "", "Default serial port for connect requests")
	serveCmd.Flags().BoolVar(&advertise, "advertise", true, "Announce the panel over mDNS")
	serveCmd.Flags().StringVar(&instance, "instance", "", "mDNS instance name (default screwctl-<hostname>)")
}

// applyFlags overlays explicitly set flags on the settings file values.
func applyFlags(cmd *cobra.Command, settings *config.Settings) {
	if settings.Panel == nil {
		settings.Panel = config.DefaultPanel()
	}
	p := settings.Panel
	if cmd.Flags().Changed("host") {
		p.Host = host
	}
	if cmd.Flags().Changed("port") {
		p.Port = port
	}
	if cmd.Flags().Changed("advertise") {
		p.Advertise = advertise
	}
	if cmd.Flags().Changed("instance") {
		p.Instance = instance
	}
	if cmd.Flags().Changed("serial") {
		settings.Serial.Port = serialPort
	}
}

// initLogging prefers --log-level, then SCREWCTL_LOG_LEVEL, then the
// flag default. A server is never silent by default.
func initLogging(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("log-level") && os.Getenv(logging.LogLevelEnvVar) != "" {
		return logging.InitializeFromEnv()
	}
	return logging.Initialize(logLevel)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Validate: Either both cert and key are provided, or neither
	if (certPath != "" && keyPath == "") || (certPath == "" && keyPath != "") {
		return fmt.Errorf("both --cert and --key must be provided together, or neither")
	}
	if certPath != "" {
		if _, err := os.Stat(certPath); os.IsNotExist(err) {
			return fmt.Errorf("certificate file not found: %s", certPath)
		}
		if _, err := os.Stat(keyPath); os.IsNotExist(err) {
			return fmt.Errorf("private key file not found: %s", keyPath)
		}
	}

	if err := initLogging(cmd); err != nil {
		return err
	}
	defer logging.Sync()

	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	applyFlags(cmd, settings)

	// The link is created before the server, so its handler forwards
	// through srv once it exists.
	var srv *server.Server
	link := devicelink.New(settings.Serial, devicelink.WithHandler(func(p, text string) {
		srv.Received(p, text)
	}))
	s := session.New(settings, link)

	srv, err = server.New(&server.Config{
		Host:     settings.Panel.Host,
		Port:     settings.Panel.Port,
		CertPath: certPath,
		KeyPath:  keyPath,
	}, s)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	link.OnStatus(srv.LinkStatus)
	defer link.Close()

	if err := srv.Listen(); err != nil {
		return err
	}

	if settings.Panel.Advertise {
		ad, err := discovery.Advertise(discovery.AdvertiseOptions{
			Instance: settings.Panel.Instance,
			Port:     settings.Panel.Port,
			Version:  version.Version,
			TLS:      certPath != "",
		})
		if err != nil {
			// The panel still works without mDNS
			logging.Warn("mDNS advertisement failed", zap.Error(err))
		} else {
			defer ad.Shutdown()
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("screwctl-server %s (commit: %s)\n", version.Version, version.Commit)
	},
}
