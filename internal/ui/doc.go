// Package ui renders the run-once terminal output of the screwctl commands.
//
// Commands print a Header describing what they are doing, then a Result box
// (success, warning or failure with troubleshooting tips). Preset lists are
// printed with PresetTable and live values with Gauge. Styles here are
// shared with the interactive panel in internal/tui.
//
// Logging is controlled by SCREWCTL_LOG_LEVEL. When it is unset zap is
// silent, so only this curated output reaches the terminal.
package ui
