package cli

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	bindDefaults()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Pipeline.MaxQueries != 4 {
		t.Errorf("expected default max queries 4, got %d", cfg.Pipeline.MaxQueries)
	}
	if cfg.Search.ResultsPerQuery != 5 {
		t.Errorf("expected default results per query 5, got %d", cfg.Search.ResultsPerQuery)
	}
	if !cfg.Cache.Enabled {
		t.Error("expected cache enabled by default")
	}
}

func TestLoadConfig_OverlaysMergedSettings(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	bindDefaults()

	viper.Set("pipeline.max_queries", 7)
	viper.Set("llm.model", "gpt-4o")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Pipeline.MaxQueries != 7 {
		t.Errorf("expected max queries 7, got %d", cfg.Pipeline.MaxQueries)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %q", cfg.LLM.Model)
	}
	// Untouched keys keep their defaults
	if cfg.Search.ResultsPerQuery != 5 {
		t.Errorf("expected results per query 5, got %d", cfg.Search.ResultsPerQuery)
	}
}

func TestLoadConfig_Environment(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	t.Setenv("VERITUBE_PIPELINE_MAX_QUERIES", "9")

	initConfig()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Pipeline.MaxQueries != 9 {
		t.Errorf("expected max queries 9 from environment, got %d", cfg.Pipeline.MaxQueries)
	}
}

func TestBuildConfig_FlagBeatsConfigFile(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	bindDefaults()
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("GOOGLE_API_KEY", "test-search-key")
	t.Setenv("GOOGLE_CX", "test-cx")

	viper.Set("pipeline.max_queries", 7)

	flags := evaluateCmd.Flags()
	f := flags.Lookup("max-queries")
	defer func() {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}()

	cfg, err := buildConfig(flags)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Pipeline.MaxQueries != 7 {
		t.Errorf("expected file value 7 with flag unset, got %d", cfg.Pipeline.MaxQueries)
	}

	if err := flags.Set("max-queries", "2"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	cfg, err = buildConfig(flags)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Pipeline.MaxQueries != 2 {
		t.Errorf("expected explicit flag to win, got %d", cfg.Pipeline.MaxQueries)
	}
}

func TestBuildConfig_MissingCredentials(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	bindDefaults()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GOOGLE_CX", "")

	if _, err := buildConfig(evaluateCmd.Flags()); err == nil {
		t.Error("expected error when credentials are absent")
	}
}
