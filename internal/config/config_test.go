package config

import "testing"

func validConfig() Config {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		LLM: LLMConfig{
			Providers: map[string]ProviderConfig{
				"openai": {APIKey: "test-key", BaseURL: "https://api.openai.com/v1"},
			},
			Embedder:  EmbedderConfig{Provider: "openai", Model: "text-embedding-3-small"},
			Generator: GeneratorConfig{Provider: "openai", Model: "gpt-4o-mini"},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_ThresholdAboveOne(t *testing.T) {
	cfg := validConfig()
	cfg.Retrieval.SimilarityThreshold = 1.5

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for threshold above 1")
	}
}

func TestValidate_OverlapNotSmallerThanChunk(t *testing.T) {
	cfg := validConfig()
	cfg.Ingest.ChunkWords = 40
	cfg.Ingest.ChunkOverlapWords = 40

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for overlap >= chunk size")
	}
}

func TestValidate_UndeclaredProvider(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Generator.Provider = "nebius"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for undeclared provider")
	}

	expected := `llm.generator.provider "nebius" is not declared in llm.providers`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_MissingEmbedderProvider(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Embedder.Provider = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedder provider")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 90 {
		t.Errorf("expected WriteTimeoutSec=90, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Retrieval.TopK != 4 {
		t.Errorf("expected TopK=4, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.SimilarityThreshold != 0.3 {
		t.Errorf("expected SimilarityThreshold=0.3, got %v", cfg.Retrieval.SimilarityThreshold)
	}
	if cfg.Ingest.ChunkWords != 220 {
		t.Errorf("expected ChunkWords=220, got %d", cfg.Ingest.ChunkWords)
	}
	if cfg.Ingest.ChunkOverlapWords != 40 {
		t.Errorf("expected ChunkOverlapWords=40, got %d", cfg.Ingest.ChunkOverlapWords)
	}
	if cfg.Ingest.MaxUploadBytes != 10<<20 {
		t.Errorf("expected MaxUploadBytes=10MiB, got %d", cfg.Ingest.MaxUploadBytes)
	}
	if cfg.Storage.IndexPath == "" {
		t.Error("expected IndexPath default to be set")
	}
	if cfg.LLM.Generator.TimeoutSec != 30 {
		t.Errorf("expected generator TimeoutSec=30, got %d", cfg.LLM.Generator.TimeoutSec)
	}
	if cfg.LLM.Generator.RetryTransient == nil || !*cfg.LLM.Generator.RetryTransient {
		t.Error("expected RetryTransient to default to true")
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	retry := false
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Retrieval: RetrievalConfig{TopK: 8, SimilarityThreshold: 0.5},
		Ingest:    IngestConfig{ChunkWords: 100, ChunkOverlapWords: 10, MaxUploadBytes: 1 << 20},
		Storage:   StorageConfig{IndexPath: "/var/lib/loadlens/index.json"},
		LLM: LLMConfig{
			Generator: GeneratorConfig{TimeoutSec: 45, RetryTransient: &retry},
		},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Retrieval.TopK != 8 {
		t.Errorf("expected TopK=8, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.SimilarityThreshold != 0.5 {
		t.Errorf("expected SimilarityThreshold=0.5, got %v", cfg.Retrieval.SimilarityThreshold)
	}
	if cfg.Storage.IndexPath != "/var/lib/loadlens/index.json" {
		t.Errorf("expected custom IndexPath kept, got %q", cfg.Storage.IndexPath)
	}
	if cfg.LLM.Generator.TimeoutSec != 45 {
		t.Errorf("expected TimeoutSec=45, got %d", cfg.LLM.Generator.TimeoutSec)
	}
	if *cfg.LLM.Generator.RetryTransient {
		t.Error("expected RetryTransient=false to be kept")
	}
}
