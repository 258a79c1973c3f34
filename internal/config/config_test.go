package config

import (
	"errors"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTPAddr)
	}
	if cfg.ImageSize != 128 {
		t.Fatalf("unexpected image size: %d", cfg.ImageSize)
	}
	if cfg.DefaultTopN != 3 || cfg.MaxTopN != 10 {
		t.Fatalf("unexpected top-n policy: default=%d max=%d", cfg.DefaultTopN, cfg.MaxTopN)
	}
	if cfg.PoolSize <= 0 {
		t.Fatalf("pool size must default to a positive value, got %d", cfg.PoolSize)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MUSHROOM_HTTP_ADDR", ":9999")
	t.Setenv("MUSHROOM_MAX_TOP_N", "20")
	t.Setenv("MUSHROOM_MODEL_PATH", "/models/custom.onnx")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Fatalf("env override ignored: %s", cfg.HTTPAddr)
	}
	if cfg.MaxTopN != 20 {
		t.Fatalf("env override ignored: %d", cfg.MaxTopN)
	}
	if cfg.ModelPath != "/models/custom.onnx" {
		t.Fatalf("env override ignored: %s", cfg.ModelPath)
	}
}

func TestLoadRejectsInvalidImageSize(t *testing.T) {
	t.Setenv("MUSHROOM_IMAGE_SIZE", "-1")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
	if cfgErr.Source != "image_size" {
		t.Fatalf("unexpected source: %s", cfgErr.Source)
	}
}

func TestLoadRejectsMaxTopNBelowDefault(t *testing.T) {
	t.Setenv("MUSHROOM_DEFAULT_TOP_N", "5")
	t.Setenv("MUSHROOM_MAX_TOP_N", "2")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
}
