package config

import (
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	APIURL  string        `env:"TEST_API_URL" envDefault:"http://localhost:8080"`
	Timeout time.Duration `env:"TEST_TIMEOUT" envDefault:"2s"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.APIURL != "http://localhost:8080" {
		t.Fatalf("APIURL = %q, want default", cfg.APIURL)
	}
	if cfg.Timeout != 2*time.Second {
		t.Fatalf("Timeout = %v, want 2s", cfg.Timeout)
	}
}

func TestParseEnvUsesPrefix(t *testing.T) {
	t.Setenv("TEST_API_URL", "http://unprefixed")
	t.Setenv("ROYALTYDESK_TEST_API_URL", "http://prefixed")

	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.APIURL != "http://prefixed" {
		t.Fatalf("APIURL = %q, want prefixed value", cfg.APIURL)
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("ROYALTYDESK_TEST_TIMEOUT", "soon")

	var cfg envTestConfig
	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

// Exitf calls os.Exit, so it runs in a subprocess.
func TestExitfExitsWithCode1(t *testing.T) {
	if os.Getenv("ROYALTYDESK_EXITF_SUBPROCESS") == "1" {
		Exitf("fatal: %s", "bootstrap failed")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestExitfExitsWithCode1$")
	cmd.Env = append(os.Environ(), "ROYALTYDESK_EXITF_SUBPROCESS=1")
	out, err := cmd.CombinedOutput()

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected *exec.ExitError, got %T: %v", err, err)
	}
	if exitErr.ExitCode() != 1 {
		t.Fatalf("exit code = %d, want 1", exitErr.ExitCode())
	}
	if !strings.Contains(string(out), "fatal: bootstrap failed") {
		t.Fatalf("stderr = %q", string(out))
	}
}
