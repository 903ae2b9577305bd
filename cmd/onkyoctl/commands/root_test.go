package commands

import (
	"path/filepath"
	"testing"

	"github.com/andyrak/onkyo-ng/pkg/cli"
)

// withTestConfig points the package config at a throwaway file and
// restores the global state afterwards.
func withTestConfig(t *testing.T) *cli.Config {
	t.Helper()

	cfg, err := cli.LoadConfigWithPath(appName, filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}

	oldConfig, oldHost, oldContext := globalConfig, hostFlag, contextName
	globalConfig, hostFlag, contextName = cfg, "", ""
	t.Setenv(cli.ContextEnvVar, "")
	t.Cleanup(func() {
		globalConfig, hostFlag, contextName = oldConfig, oldHost, oldContext
	})
	return cfg
}

func TestResolveHost_Precedence(t *testing.T) {
	cfg := withTestConfig(t)

	// Nothing configured: the documented default applies.
	host, err := resolveHost(nil)
	if err != nil {
		t.Fatalf("resolveHost error: %v", err)
	}
	if host != DefaultHost {
		t.Errorf("host = %q, want default %q", host, DefaultHost)
	}

	// A current context supplies the host.
	if err := cfg.AddContext("den", &cli.Context{Host: "ctx-host"}); err != nil {
		t.Fatalf("AddContext error: %v", err)
	}
	if err := cfg.UseContext("den"); err != nil {
		t.Fatalf("UseContext error: %v", err)
	}
	host, err = resolveHost(nil)
	if err != nil {
		t.Fatalf("resolveHost error: %v", err)
	}
	if host != "ctx-host" {
		t.Errorf("host = %q, want context host", host)
	}

	// The --host flag beats the context.
	hostFlag = "flag-host"
	host, err = resolveHost(nil)
	if err != nil {
		t.Fatalf("resolveHost error: %v", err)
	}
	if host != "flag-host" {
		t.Errorf("host = %q, want flag host", host)
	}

	// A positional argument beats everything.
	host, err = resolveHost([]string{"arg-host"})
	if err != nil {
		t.Fatalf("resolveHost error: %v", err)
	}
	if host != "arg-host" {
		t.Errorf("host = %q, want positional host", host)
	}
}

func TestResolveHost_MissingNamedContext(t *testing.T) {
	withTestConfig(t)

	contextName = "nope"
	if _, err := resolveHost(nil); err == nil {
		t.Error("an explicitly named missing context should be an error")
	}
}

func TestParseInputs(t *testing.T) {
	sources, err := parseInputs("01, 10,2b")
	if err != nil {
		t.Fatalf("parseInputs error: %v", err)
	}
	if len(sources) != 3 {
		t.Fatalf("parseInputs returned %d sources, want 3", len(sources))
	}
	if sources[0].Code() != "01" || sources[1].Code() != "10" || sources[2].Code() != "2B" {
		t.Errorf("codes = %s %s %s", sources[0], sources[1], sources[2])
	}

	if _, err := parseInputs("01,ZZ"); err == nil {
		t.Error("unknown code should be an error")
	}

	sources, err = parseInputs("  ")
	if err != nil || sources != nil {
		t.Errorf("blank spec = (%v, %v), want (nil, nil)", sources, err)
	}
}

func TestReceiverOptions_FromContext(t *testing.T) {
	cfg := withTestConfig(t)

	err := cfg.AddContext("den", &cli.Context{
		Host:    "ctx-host",
		Port:    60200,
		Timeout: 5,
		Ending:  "eof",
	})
	if err != nil {
		t.Fatalf("AddContext error: %v", err)
	}
	if err := cfg.UseContext("den"); err != nil {
		t.Fatalf("UseContext error: %v", err)
	}

	opts, err := receiverOptions(nil, 0)
	if err != nil {
		t.Fatalf("receiverOptions error: %v", err)
	}
	if opts.Host != "ctx-host" {
		t.Errorf("Host = %q", opts.Host)
	}
	if opts.Port != 60200 {
		t.Errorf("Port = %d, want context port", opts.Port)
	}
	if opts.Timeout.Seconds() != 5 {
		t.Errorf("Timeout = %s, want 5s", opts.Timeout)
	}
}

func TestReceiverOptions_BadEnding(t *testing.T) {
	cfg := withTestConfig(t)

	if err := cfg.AddContext("den", &cli.Context{Host: "h", Ending: "bogus"}); err != nil {
		t.Fatalf("AddContext error: %v", err)
	}
	if err := cfg.UseContext("den"); err != nil {
		t.Fatalf("UseContext error: %v", err)
	}

	if _, err := receiverOptions(nil, 0); err == nil {
		t.Error("a bad ending spelling in the context should be an error")
	}
}
