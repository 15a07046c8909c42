package cmd

import (
	"context"
	"errors"
	"flag"
	"io"
	"testing"
)

type testConfig struct {
	APIURL string `env:"CMD_TEST_API_URL" envDefault:"http://127.0.0.1:8080"`
	View   string `env:"CMD_TEST_VIEW" envDefault:"notifications"`
}

func bindTestFlags(fs *flag.FlagSet, cfg *testConfig) {
	fs.StringVar(&cfg.APIURL, "api", cfg.APIURL, "api")
	fs.StringVar(&cfg.View, "view", cfg.View, "view")
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("ROYALTYDESK_CMD_TEST_API_URL", "http://env:9000")
	t.Setenv("ROYALTYDESK_CMD_TEST_VIEW", "assets")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-api", "http://flag:9001"}, bindTestFlags)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.APIURL != "http://flag:9001" {
		t.Fatalf("APIURL = %q, want flag value", cfg.APIURL)
	}
	if cfg.View != "assets" {
		t.Fatalf("View = %q, want env value", cfg.View)
	}
}

func TestParseConfigDefaultsWithoutFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := ParseConfig[testConfig](fs, nil, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:8080" || cfg.View != "notifications" {
		t.Fatalf("cfg = %+v, want env defaults", cfg)
	}
}

func TestParseConfigRejectsNilParser(t *testing.T) {
	if _, err := ParseConfig(nil, nil, bindTestFlags); err == nil {
		t.Fatal("expected nil parser error")
	}
}

func TestParseConfigRejectsUnknownFlag(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if _, err := ParseConfig(fs, []string{"-colour", "red"}, bindTestFlags); err == nil {
		t.Fatal("expected unknown flag error")
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(context.Background(), "", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(context.Background(), ServiceDashboard, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryReturnsRunError(t *testing.T) {
	t.Setenv("ROYALTYDESK_OTEL_ENDPOINT", "")

	want := errors.New("boom")
	err := RunWithTelemetry(context.Background(), ServiceDashboard, func(context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("RunWithTelemetry() error = %v, want %v", err, want)
	}
}
