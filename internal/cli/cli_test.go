package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/manifesto/internal/dashboard"
	"github.com/ppiankov/manifesto/internal/model"
	"github.com/ppiankov/manifesto/internal/pipeline"
	"github.com/ppiankov/manifesto/internal/worker"
)

func TestLoadConfig_Defaults(t *testing.T) {
	if got := loadConfig(viper.New()); !reflect.DeepEqual(got, model.DefaultConfig()) {
		t.Errorf("empty viper should yield defaults, got %+v", got)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("source.location", "https://example.org/data")
	v.Set("http.timeout", "5s")
	v.Set("cache.enabled", false)
	v.Set("rate_limiting.requests_per_second", 2.5)
	v.Set("consensus.max_radius", 300)
	v.Set("consensus.models", []string{"gpt-4o", "gemini"})
	v.Set("output.color", "never")

	cfg := loadConfig(v)
	if cfg.Source.Location != "https://example.org/data" {
		t.Errorf("location = %s", cfg.Source.Location)
	}
	if cfg.HTTP.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", cfg.HTTP.Timeout)
	}
	if cfg.Cache.Enabled {
		t.Error("cache should be disabled")
	}
	if cfg.RateLimiting.RequestsPerSecond != 2.5 {
		t.Errorf("rps = %v", cfg.RateLimiting.RequestsPerSecond)
	}
	if cfg.Consensus.MaxRadius != 300 {
		t.Errorf("max radius = %d", cfg.Consensus.MaxRadius)
	}
	if !reflect.DeepEqual(cfg.Consensus.Models, []string{"gpt-4o", "gemini"}) {
		t.Errorf("models = %v", cfg.Consensus.Models)
	}
	if cfg.Output.Color != "never" {
		t.Errorf("color = %s", cfg.Output.Color)
	}
	// untouched keys keep their defaults
	if cfg.Concurrency.Workers != model.DefaultConfig().Concurrency.Workers {
		t.Errorf("workers = %d", cfg.Concurrency.Workers)
	}
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("MANIFESTO_SOURCE_LOCATION", "/srv/manifesto")
	t.Setenv("MANIFESTO_CONCURRENCY_WORKERS", "3")

	v := viper.New()
	v.SetEnvPrefix("MANIFESTO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := loadConfig(v)
	if cfg.Source.Location != "/srv/manifesto" || cfg.Concurrency.Workers != 3 {
		t.Errorf("environment not applied: %+v %+v", cfg.Source, cfg.Concurrency)
	}
}

func TestWriteConfigTemplate_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := writeConfigTemplate(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "# Manifesto Configuration File") {
		t.Errorf("missing header:\n%s", buf.String())
	}

	var cfg model.Config
	if err := yaml.Unmarshal(buf.Bytes(), &cfg); err != nil {
		t.Fatalf("template is not valid YAML: %v", err)
	}
	if !reflect.DeepEqual(&cfg, model.DefaultConfig()) {
		t.Errorf("template does not decode to the defaults:\n%+v", cfg)
	}
}

func TestWriteDefaultConfig_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".manifesto", "config.yaml")
	if err := writeDefaultConfig(path); err != nil {
		t.Fatal(err)
	}
	if err := writeDefaultConfig(path); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected refusal, got %v", err)
	}
}

func TestNewSource(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Source.Location = t.TempDir()

	cfg.Cache.Enabled = false
	src, mem, err := newSource(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(*pipeline.DirSource); !ok {
		t.Errorf("expected a directory source, got %T", src)
	}
	if mem != nil {
		t.Error("no memory cache expected when caching is disabled")
	}

	cfg.Cache.Enabled = true
	src, mem, err = newSource(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(*pipeline.CachedSource); !ok {
		t.Errorf("expected a cached source, got %T", src)
	}
	if mem == nil {
		t.Error("expected the memory cache behind the cached source")
	}
	if src.Location() != cfg.Source.Location {
		t.Errorf("location = %s", src.Location())
	}

	cfg.Source.Location = filepath.Join(cfg.Source.Location, "missing")
	if _, _, err := newSource(cfg); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestEnvironmentReport(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, pipeline.ConfigFile), []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := model.DefaultConfig()
	cfg.Source.Location = root

	src, mem, err := newSource(cfg)
	if err != nil {
		t.Fatal(err)
	}
	pool := worker.NewPool(2)
	defer pool.Close()
	app := dashboard.New(dashboard.Options{Artifacts: pipeline.NewArtifacts(src, nil), Pool: pool})
	defer app.Close()
	if err := app.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	(&environment{cfg: cfg, app: app, pool: pool, mem: mem}).report(&buf)
	out := buf.String()
	for _, want := range []string{"Workers:  2", "Datasets: 0 fetched", "Cache:", "misses"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	(&environment{cfg: cfg, app: app, pool: pool}).report(&buf)
	if strings.Contains(buf.String(), "Cache:") {
		t.Errorf("no cache line expected without a memory cache:\n%s", buf.String())
	}
}

func TestConsensusRequest_Radius(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Consensus.Radius = 250

	if req := consensusRequest(cfg, model.FilterAll, 0, false); req.Radius != 250 {
		t.Errorf("unset flag should use the config radius, got %d", req.Radius)
	}
	if req := consensusRequest(cfg, model.FilterAll, -5, true); req.Radius != -5 {
		t.Errorf("explicit radius must reach the dashboard for clamping, got %d", req.Radius)
	}
	if req := consensusRequest(cfg, model.FilterAll, 0, true); req.Radius != 0 {
		t.Errorf("explicit zero radius replaced by config: %d", req.Radius)
	}
	if req := consensusRequest(cfg, model.FilterExplicit, 40, true); req.Mode != model.FilterExplicit || req.Radius != 40 {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestConsensusRequest_ConfigModels(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Consensus.Models = []string{"gpt", "gemini"}

	req := consensusRequest(cfg, model.FilterAll, 0, false)
	if !reflect.DeepEqual(req.Models, []string{"gpt", "gemini"}) {
		t.Errorf("models = %v", req.Models)
	}
}

func TestCheckBandFlags(t *testing.T) {
	if err := checkBandFlags("", "spd"); err == nil {
		t.Error("expected --party without --band to be rejected")
	}
	for _, tc := range [][2]string{{"", ""}, {"high", ""}, {"high", "spd"}} {
		if err := checkBandFlags(tc[0], tc[1]); err != nil {
			t.Errorf("checkBandFlags(%q, %q): %v", tc[0], tc[1], err)
		}
	}
}

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in, want string
		wantErr  bool
	}{
		{"", "", false},
		{"explizit", model.CategoryExplicit, false},
		{"Explicit", model.CategoryExplicit, false},
		{"semantisch", model.CategorySemantic, false},
		{"both", "", true},
	}
	for _, tc := range cases {
		got, err := parseCategory(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("parseCategory(%q) = %q, %v", tc.in, got, err)
		}
	}
}

func TestParseMode_FallsBackToConfig(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Consensus.Mode = "explicit"

	mode, err := parseMode("", cfg)
	if err != nil || mode != model.FilterExplicit {
		t.Errorf("expected configured mode, got %s, %v", mode, err)
	}
	mode, err = parseMode("all", cfg)
	if err != nil || mode != model.FilterAll {
		t.Errorf("flag should win, got %s, %v", mode, err)
	}
	if _, err := parseMode("strict", cfg); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"consensus", "parties", "models", "topics", "strictness", "methodology", "config", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %s not registered: %v", name, err)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)
	if got := buf.String(); got != "manifesto v"+Version+"\n" {
		t.Errorf("version output %q", got)
	}
}
