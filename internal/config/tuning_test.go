package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultTuningConfig(t *testing.T) {
	cfg := DefaultTuningConfig()

	if cfg.TwoComponentEpsMeters == nil || *cfg.TwoComponentEpsMeters != 0.13 {
		t.Errorf("Expected TwoComponentEpsMeters 0.13, got %v", cfg.TwoComponentEpsMeters)
	}
	if cfg.MultiComponentEpsMeters == nil || *cfg.MultiComponentEpsMeters != 3.5 {
		t.Errorf("Expected MultiComponentEpsMeters 3.5, got %v", cfg.MultiComponentEpsMeters)
	}
	if cfg.FallbackEnabled == nil || *cfg.FallbackEnabled {
		t.Errorf("Expected FallbackEnabled false, got %v", cfg.FallbackEnabled)
	}

	if cfg.GetBench7LengthMeters() != 2.32 {
		t.Errorf("GetBench7LengthMeters() = %f, want 2.32", cfg.GetBench7LengthMeters())
	}
	if cfg.GetTrashBinExactVertices() != 73 {
		t.Errorf("GetTrashBinExactVertices() = %d, want 73", cfg.GetTrashBinExactVertices())
	}
	if cfg.GetMultiComponentStrategy() != StrategyDBSCAN {
		t.Errorf("GetMultiComponentStrategy() = %q, want %q", cfg.GetMultiComponentStrategy(), StrategyDBSCAN)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestEmptyConfigGettersMatchDefaults(t *testing.T) {
	empty := EmptyTuningConfig()
	def := DefaultTuningConfig()

	checks := []struct {
		name      string
		got, want float64
	}{
		{"chain tolerance", empty.GetChainToleranceMeters(), def.GetChainToleranceMeters()},
		{"backrest offset min", empty.GetBackrestOffsetMinMeters(), def.GetBackrestOffsetMinMeters()},
		{"backrest offset max", empty.GetBackrestOffsetMaxMeters(), def.GetBackrestOffsetMaxMeters()},
		{"rect parallel", empty.GetRectParallelToleranceDeg(), def.GetRectParallelToleranceDeg()},
		{"trash bin max length", empty.GetTrashBinMaxLengthMeters(), def.GetTrashBinMaxLengthMeters()},
		{"exclusion aspect", empty.GetExclusionMinAspect(), def.GetExclusionMinAspect()},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: empty getter = %v, default = %v", c.name, c.got, c.want)
		}
	}
}

// The JSON defaults file and the compiled-in defaults must not drift apart.
func TestDefaultsFileMatchesCompiledDefaults(t *testing.T) {
	fromFile := MustLoadDefaultConfig()
	if diff := cmp.Diff(DefaultTuningConfig(), fromFile); diff != "" {
		t.Errorf("config/tuning.defaults.json differs from DefaultTuningConfig (-want +got):\n%s", diff)
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "two_component_eps_meters": 0.2,
  "multi_component_strategy": "chain",
  "rect_length_tolerance_ratio": 0.15,
  "single_bench_fallback_enabled": true
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if got := cfg.GetTwoComponentEpsMeters(); got != 0.2 {
		t.Errorf("GetTwoComponentEpsMeters() = %v, want 0.2", got)
	}
	if got := cfg.GetMultiComponentStrategy(); got != StrategyChain {
		t.Errorf("GetMultiComponentStrategy() = %q, want chain", got)
	}
	if got := cfg.GetRectLengthToleranceRatio(); got != 0.15 {
		t.Errorf("GetRectLengthToleranceRatio() = %v, want 0.15", got)
	}
	if !cfg.GetFallbackEnabled() {
		t.Error("GetFallbackEnabled() = false, want true")
	}
	// untouched fields keep defaults
	if got := cfg.GetMultiComponentEpsMeters(); got != DefaultMultiComponentEpsMeters {
		t.Errorf("GetMultiComponentEpsMeters() = %v, want default", got)
	}
}

func TestLoadTuningConfigMissing(t *testing.T) {
	_, err := LoadTuningConfig("/nonexistent/path/to/config.json")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadTuningConfigWrongExtension(t *testing.T) {
	_, err := LoadTuningConfig("/tmp/config.yaml")
	if err == nil {
		t.Error("Expected error for non-json extension, got nil")
	}
}

func TestLoadTuningConfigInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_config.json")

	invalidJSON := `{
  "two_component_eps_meters": "invalid"
`
	if err := os.WriteFile(configPath, []byte(invalidJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid JSON, got nil")
	}
}

func TestLoadTuningConfigRejectsBadValues(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "zero_eps.json")
	if err := os.WriteFile(configPath, []byte(`{"multi_component_eps_meters": 0}`), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TuningConfig
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     DefaultTuningConfig(),
			wantErr: false,
		},
		{
			name:    "empty config is valid",
			cfg:     &TuningConfig{},
			wantErr: false,
		},
		{
			name:    "zero chain tolerance",
			cfg:     &TuningConfig{ChainToleranceMeters: ptrFloat64(0)},
			wantErr: true,
		},
		{
			name:    "negative eps",
			cfg:     &TuningConfig{TwoComponentEpsMeters: ptrFloat64(-0.1)},
			wantErr: true,
		},
		{
			name:    "zero chain length",
			cfg:     &TuningConfig{ChainMaxLength: ptrInt(0)},
			wantErr: true,
		},
		{
			name:    "straightness above one",
			cfg:     &TuningConfig{BackrestStraightnessMin: ptrFloat64(1.2)},
			wantErr: true,
		},
		{
			name:    "unknown strategy",
			cfg:     &TuningConfig{MultiComponentStrategy: ptrString("kmeans")},
			wantErr: true,
		},
		{
			name:    "offset band inverted against default max",
			cfg:     &TuningConfig{BackrestOffsetMinMeters: ptrFloat64(0.5)},
			wantErr: true,
		},
		{
			name: "trash bin vertex band inverted",
			cfg: &TuningConfig{
				TrashBinMinVertices: ptrInt(80),
				TrashBinMaxVertices: ptrInt(75),
			},
			wantErr: true,
		},
		{
			name:    "index max disabled",
			cfg:     &TuningConfig{IndexMaxLengthMeters: ptrFloat64(0)},
			wantErr: false,
		},
		{
			name:    "zero turn minimum is allowed",
			cfg:     &TuningConfig{ExclusionTurnMinDeg: ptrFloat64(0)},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error should wrap ErrInvalid: %v", err)
			}
		})
	}
}
