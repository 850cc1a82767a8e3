package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:   HTTPConfig{Port: 8080},
		Source: SourceConfig{RequestBase: "https://example.wd1.myworkdayjobs.com/wday/cxs/ex/Careers"},
		Report: ReportConfig{Format: "html"},
	}
}

func TestValidate_InvalidReportFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Report.Format = "pdf"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid report format")
	}

	expected := `report.format must be "html" or "markdown", got "pdf"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidReportFormats(t *testing.T) {
	for _, format := range []string{"html", "markdown"} {
		t.Run("format="+format, func(t *testing.T) {
			cfg := validConfig()
			cfg.Report.Format = format
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid format %q: %v", format, err)
			}
		})
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"invalid port", func(c *Config) { c.HTTP.Port = 0 }},
		{"port too large", func(c *Config) { c.HTTP.Port = 70000 }},
		{"missing request base", func(c *Config) { c.Source.RequestBase = "" }},
		{"negative limit", func(c *Config) { c.Source.Limit = -1 }},
		{"cache without addrs", func(c *Config) { c.Cache.Enabled = true }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Source.RatePerSec != 5 {
		t.Errorf("expected RatePerSec=5, got %f", cfg.Source.RatePerSec)
	}
	if cfg.Source.MaxRetries != 3 {
		t.Errorf("expected MaxRetries=3, got %d", cfg.Source.MaxRetries)
	}
	if cfg.Source.EnrichParallel != 4 {
		t.Errorf("expected EnrichParallel=4, got %d", cfg.Source.EnrichParallel)
	}
	if cfg.Cache.TTLSec != 86400 {
		t.Errorf("expected TTLSec=86400, got %d", cfg.Cache.TTLSec)
	}
	if cfg.Report.Format != "html" {
		t.Errorf("expected Format=html, got %q", cfg.Report.Format)
	}
	if cfg.Report.DateField != "startDate" {
		t.Errorf("expected DateField=startDate, got %q", cfg.Report.DateField)
	}
	if cfg.Report.LastRunFile != "last_run.txt" {
		t.Errorf("expected LastRunFile=last_run.txt, got %q", cfg.Report.LastRunFile)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Source: SourceConfig{RequestBase: "https://example.com/cxs/", RatePerSec: 1, EnrichParallel: 16},
		Report: ReportConfig{Dir: "out", Prefix: "OSU_jobs", Format: "markdown"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Source.RequestBase != "https://example.com/cxs" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.Source.RequestBase)
	}
	if cfg.Source.EnrichParallel != 16 {
		t.Errorf("expected EnrichParallel=16, got %d", cfg.Source.EnrichParallel)
	}
	if cfg.Report.Prefix != "OSU_jobs" {
		t.Errorf("expected Prefix=OSU_jobs, got %q", cfg.Report.Prefix)
	}
	if cfg.Report.LastRunFile != "out/last_run.txt" {
		t.Errorf("expected LastRunFile=out/last_run.txt, got %q", cfg.Report.LastRunFile)
	}
}

func TestParse_ExpandsEnvVars(t *testing.T) {
	t.Setenv("JOBSIFT_TEST_PORT", "9090")

	doc := `
http:
  port: ${JOBSIFT_TEST_PORT}
source:
  request_base: ${JOBSIFT_TEST_BASE:-https://example.com/cxs}
facets:
  timeType: Time Type
`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Source.RequestBase != "https://example.com/cxs" {
		t.Errorf("expected default request base, got %q", cfg.Source.RequestBase)
	}
	if cfg.Facets["timeType"] != "Time Type" {
		t.Errorf("expected facet display name, got %v", cfg.Facets)
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("http:\n  port: 8080\n"))
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Fatalf("expected invalid config error, got %v", err)
	}

	_, err = Parse([]byte("http: [unterminated"))
	if err == nil || !strings.Contains(err.Error(), "failed to parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}
