package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/screwctl/internal/command"
	"github.com/muurk/screwctl/internal/config"
	"github.com/muurk/screwctl/internal/devicelink"
	"github.com/muurk/screwctl/internal/discovery"
	"github.com/muurk/screwctl/internal/exchange"
	"github.com/muurk/screwctl/internal/logging"
	"github.com/muurk/screwctl/internal/preset"
	"github.com/muurk/screwctl/internal/ui"
)

// Overridden in tests
var (
	listPorts   = devicelink.ListPorts
	linkOptions []devicelink.Option
)

// Command flags
var (
	portName      string
	waitFor       time.Duration
	convertFormat string
	forceWrite    bool
	scanTimeout   int
)

func init() {
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(scanCmd)

	sendCmd.Flags().StringVar(&portName, "port", "", "Serial port (default is the configured port)")
	sendCmd.Flags().DurationVar(&waitFor, "wait", 0, "Print device replies received within this duration")

	convertCmd.Flags().StringVar(&convertFormat, "format", "", "Output format (xlsx, csv, json, yaml); default from the output extension")
	convertCmd.Flags().BoolVarP(&forceWrite, "force", "f", false, "Overwrite the output file without asking")

	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 5, "Scan timeout in seconds")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

// portsCmd lists serial ports
var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Long: `List the serial ports present on this machine.

Use one of the listed names with 'screwctl send --port' or set it as
serial.port in the settings file.`,
	RunE: runPorts,
}

func runPorts(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	ports, err := listPorts()
	if err != nil {
		fmt.Fprintln(out, ui.RenderFailure("Port scan failed", err, devicelink.GetTroubleshootingHint(err)))
		return err
	}

	if len(ports) == 0 {
		fmt.Fprintln(out, "No serial ports found.")
		fmt.Fprintln(out, "\nTroubleshooting:")
		fmt.Fprintln(out, "  - Check the controller is powered and its USB cable is connected")
		fmt.Fprintln(out, "  - Install the USB-serial driver for your adapter")
		fmt.Fprintln(out, "  - On Linux, add your user to the dialout group")
		return nil
	}

	fmt.Fprintf(out, "Found %d port(s):\n\n", len(ports))
	for i, p := range ports {
		fmt.Fprintf(out, "%d. %s\n", i+1, p)
	}
	return nil
}

// sendCmd sends a single command to the controller
var sendCmd = &cobra.Command{
	Use:   "send <torque|speed> <value>",
	Short: "Send one value to the controller",
	Long: `Open the serial port, send one SET command and close the port.

Values outside the configured range are sent anyway after a warning.
With --wait, any text the controller sends back is printed.`,
	Example: `  # Set torque on the configured port
  screwctl send torque 40

  # Set speed on a specific port and show the reply
  screwctl send speed 75 --port /dev/ttyUSB0 --wait 500ms`,
	Args: cobra.ExactArgs(2),
	RunE: runSend,
}

// parseValue parses a finite number
func parseValue(text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid value %q: must be a number", text)
	}
	return v, nil
}

func runSend(cmd *cobra.Command, args []string) error {
	initLogging(false)
	defer logging.Sync()

	out := cmd.OutOrStdout()

	param, err := command.ParseParameter(args[0])
	if err != nil {
		return err
	}
	value, err := parseValue(args[1])
	if err != nil {
		return err
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	target := portName
	if target == "" {
		target = settings.Serial.Port
	}
	c := command.Encode(param, value)

	fmt.Fprint(out, ui.NewHeader("SEND COMMAND", "screwctl send "+strings.Join(args, " "),
		ui.Detail{Key: "Port", Value: target},
		ui.Detail{Key: "Command", Value: strings.TrimSpace(c.String())},
	).Render())

	r := settings.RangeFor(param)
	if !r.Contains(value) {
		fmt.Fprintln(out, ui.RenderWarning("Value outside configured range",
			ui.Detail{Key: param.Label(), Value: preset.FormatValue(value)},
			ui.Detail{Key: "Range", Value: preset.FormatValue(r.Min) + " - " + preset.FormatValue(r.Max)},
		))
	}

	replies := make(chan string, 16)
	opts := append([]devicelink.Option{devicelink.WithHandler(func(_, text string) {
		select {
		case replies <- text:
		default:
		}
	})}, linkOptions...)
	link := devicelink.New(settings.Serial, opts...)

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second+waitFor)
	defer cancel()

	if err := link.Open(ctx, target); err != nil {
		fmt.Fprintln(out, ui.RenderFailure("Connection failed", err, devicelink.GetTroubleshootingHint(err)))
		return fmt.Errorf("send failed: %s", devicelink.GetShortErrorMessage(err))
	}
	link.Send(c)

	var reply strings.Builder
	if waitFor > 0 {
		timer := time.NewTimer(waitFor)
	collect:
		for {
			select {
			case text := <-replies:
				reply.WriteString(text)
			case <-timer.C:
				break collect
			case <-ctx.Done():
				timer.Stop()
				break collect
			}
		}
	}

	if err := link.Close(); err != nil {
		fmt.Fprintln(out, ui.RenderWarning("Port did not close cleanly", ui.Detail{Key: "Error", Value: err.Error()}))
	}

	result := ui.NewSuccessResult("Command sent", ui.Detail{Key: "Port", Value: target})
	if text := strings.TrimSpace(reply.String()); text != "" {
		result.AddDetail("Reply", text)
	}
	fmt.Fprintln(out, result.Render())
	return nil
}

// readPresets imports a preset file into a fresh store
func readPresets(path string, settings *config.Settings) (*preset.Store, exchange.Format, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	cands, f, err := exchange.Import(data, filepath.Base(path))
	if err != nil {
		return nil, nil, 0, fmt.Errorf("import %s: %w", path, err)
	}
	store := preset.NewStore()
	discarded, err := store.ReplaceAll(cands, preset.Values{Torque: settings.Torque.Default, Speed: settings.Speed.Default})
	if err != nil {
		return nil, nil, 0, fmt.Errorf("import %s: %w", path, err)
	}
	return store, f, discarded, nil
}

// convertCmd converts a preset file between formats
var convertCmd = &cobra.Command{
	Use:   "convert <input> <output>",
	Short: "Convert a preset file between formats",
	Long: `Read a preset file and write it in another format.

The input format is taken from the file extension, or detected from the
contents when the extension is unknown. Rows with a non-numeric torque or
speed are skipped. The output format follows --format or the output
extension.`,
	Example: `  # Spreadsheet to yaml
  screwctl convert screws.xlsx screws.yaml

  # Write csv under an arbitrary name
  screwctl convert screws.json backup.txt --format csv`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	in, outPath := args[0], args[1]
	out := cmd.OutOrStdout()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	var f exchange.Format
	if convertFormat != "" {
		var ok bool
		if f, ok = exchange.ByName(convertFormat); !ok {
			return fmt.Errorf("unknown format %q (use xlsx, csv, json or yaml)", convertFormat)
		}
	} else if ff, ok := exchange.ForFilename(outPath); ok {
		f = ff
	} else {
		return fmt.Errorf("cannot tell the output format from %q; use --format", outPath)
	}

	store, from, discarded, err := readPresets(in, settings)
	if err != nil {
		return err
	}
	data, _, err := exchange.Export(store, f)
	if err != nil {
		return err
	}

	if _, err := os.Stat(outPath); err == nil && !forceWrite {
		if !ui.Confirm(cmd.InOrStdin(), out, "File exists", fmt.Sprintf("Overwrite %s?", outPath)) {
			return nil
		}
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	result := ui.NewSuccessResult("Converted",
		ui.Detail{Key: "From", Value: fmt.Sprintf("%s (%s)", in, from.Name())},
		ui.Detail{Key: "To", Value: fmt.Sprintf("%s (%s)", outPath, f.Name())},
		ui.Detail{Key: "Screws", Value: strconv.Itoa(store.Len())},
	)
	if discarded > 0 {
		result.AddDetail("Skipped", fmt.Sprintf("%d invalid rows", discarded))
	}
	fmt.Fprintln(out, result.Render())
	return nil
}

// showCmd prints the presets in a file
var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Show the presets in a file",
	Long: `Print the presets in a preset file as a table. Values outside the
configured ranges are flagged.`,
	Example: `  screwctl show screws.xlsx`,
	Args:    cobra.ExactArgs(1),
	RunE:    runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	store, f, discarded, err := readPresets(args[0], settings)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s (%s, %d screws)\n\n", args[0], f.Name(), store.Len())
	fmt.Fprintln(out, ui.PresetTable(store.Presets(), -1, settings.Torque, settings.Speed))
	if discarded > 0 {
		fmt.Fprintf(out, "\n%d invalid rows skipped\n", discarded)
	}
	return nil
}

// configCmd manages the settings file
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the settings file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default settings file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.CreateDefaultConfig(configPath)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSuccess("Settings written", ui.Detail{Key: "Path", Value: path}))
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(settings)
		if err != nil {
			return fmt.Errorf("failed to marshal settings: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			if path, err = config.GetConfigPath(); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

// scanCmd finds remote panels on the local network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Find remote panels on the network",
	Long: `Browse mDNS for control panels started with 'screwctl-server serve'.`,
	Example: `  screwctl scan --timeout 10`,
	RunE:    runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scanning for panels (timeout: %ds)...\n\n", scanTimeout)

	panels, err := discovery.ScanForPanels(cmd.Context(), time.Duration(scanTimeout)*time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(panels) == 0 {
		fmt.Fprintln(out, "No panels found.")
		fmt.Fprintln(out, "\nTroubleshooting:")
		fmt.Fprintln(out, "  - Ensure screwctl-server is running with --advertise")
		fmt.Fprintln(out, "  - Check both machines are on the same network segment")
		fmt.Fprintln(out, "  - Try increasing --timeout for slower networks")
		return nil
	}

	fmt.Fprintf(out, "Found %d panel(s):\n\n", len(panels))
	for i, p := range panels {
		fmt.Fprintf(out, "%d. %s\n", i+1, p.Instance)
		fmt.Fprintf(out, "   Host:    %s\n", p.Hostname)
		fmt.Fprintf(out, "   URL:     %s\n", p.BaseURL())
		if v := p.Version(); v != "" {
			fmt.Fprintf(out, "   Version: %s\n", v)
		}
		fmt.Fprintln(out)
	}
	return nil
}
