package main

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/muurk/screwctl/internal/config"
	"github.com/muurk/screwctl/internal/logging"
)

func TestApplyFlags(t *testing.T) {
	if err := serveCmd.ParseFlags([]string{"--port", "9090", "--advertise=false", "--serial", "COM4"}); err != nil {
		t.Fatal(err)
	}

	settings := config.DefaultSettings()
	settings.Panel.Host = "127.0.0.1"
	settings.Panel.Instance = "bench"
	applyFlags(serveCmd, settings)

	p := settings.Panel
	if p.Port != 9090 || p.Advertise || settings.Serial.Port != "COM4" {
		t.Errorf("flags not applied: %+v serial=%q", p, settings.Serial.Port)
	}
	if p.Host != "127.0.0.1" || p.Instance != "bench" {
		t.Errorf("unset flags overrode the settings file: %+v", p)
	}

	settings.Panel = nil
	applyFlags(serveCmd, settings)
	if settings.Panel == nil || settings.Panel.Port != 9090 {
		t.Errorf("nil panel section not defaulted: %+v", settings.Panel)
	}
}

func TestServeRejectsHalfTLS(t *testing.T) {
	certPath, keyPath = "cert.pem", ""
	t.Cleanup(func() { certPath, keyPath = "", "" })

	if err := runServe(serveCmd, nil); err == nil {
		t.Error("expected an error when only --cert is set")
	}
}

func TestInitLoggingUsesEnvironment(t *testing.T) {
	t.Setenv(logging.LogLevelEnvVar, "debug")
	t.Setenv(logging.LogFileEnvVar, filepath.Join(t.TempDir(), "server.log"))
	t.Cleanup(func() { logging.SetLogger(nil) })

	if err := initLogging(serveCmd); err != nil {
		t.Fatal(err)
	}
	if !logging.GetLogger().Core().Enabled(zapcore.DebugLevel) {
		t.Error("SCREWCTL_LOG_LEVEL=debug should enable debug logging")
	}

	t.Setenv(logging.LogLevelEnvVar, "")
	if err := initLogging(serveCmd); err != nil {
		t.Fatal(err)
	}
	core := logging.GetLogger().Core()
	if !core.Enabled(zapcore.InfoLevel) || core.Enabled(zapcore.DebugLevel) {
		t.Error("without the environment the server should log at info")
	}
}
