package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/starwalkn/staffgate"
)

func TestPrintRoutes(t *testing.T) {
	var buf bytes.Buffer

	cfg := staffgate.Config{
		Server:   staffgate.ServerConfig{BasePath: "/api/v1"},
		Upstream: staffgate.UpstreamConfig{BaseURL: "http://localhost:8112/api/v1/employee"},
	}

	printRoutes(&buf, cfg)

	out := buf.String()

	for _, want := range []string{
		"/api/v1/employee/search/{name}",
		"/api/v1/employee/topTenHighestEarningEmployeeNames",
		"DeleteEmployeeByID",
		"http://localhost:8112/api/v1/employee",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv(envConfigPath, "")

	cfgPath = ""
	if got := resolveConfigPath(); got != fallbackConfigPath {
		t.Errorf("expected fallback, got %s", got)
	}

	t.Setenv(envConfigPath, "/etc/staffgate.toml")
	if got := resolveConfigPath(); got != "/etc/staffgate.toml" {
		t.Errorf("expected env path, got %s", got)
	}

	cfgPath = "./flag.yaml"
	t.Cleanup(func() { cfgPath = "" })

	if got := resolveConfigPath(); got != "./flag.yaml" {
		t.Errorf("expected flag path, got %s", got)
	}
}
