// Package config provides settings management for screwctl.
//
// Settings are the static configuration surface of the control panel: the
// default value, bounds and preset-value buttons for torque and speed, the
// serial link parameters, and remote panel preferences. They are stored as
// YAML and follow OS-specific conventions for location.
//
// # Settings File Location
//
//   - Linux: $XDG_CONFIG_HOME/screwctl/settings.yaml or $HOME/.config/screwctl/settings.yaml
//   - macOS: $HOME/.config/screwctl/settings.yaml
//   - Windows: %LOCALAPPDATA%\screwctl\settings.yaml
//
// A missing file is not an error; the factory defaults are used (torque 40,
// speed 50, range 0..100, buttons 10/20/30/90/100, serial 9600 8N1).
//
// # Usage Example
//
//	settings, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(settings.Torque.Default)
//
// Presets (screws) are deliberately NOT stored here. They only leave the
// process through an explicit export.
package config
