package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid tuning configuration")

// Multi-component clustering strategies.
const (
	StrategyDBSCAN = "dbscan"
	StrategyChain  = "chain"
)

// Default tuning values. They were calibrated against the manually validated
// bench clusters and must match config/tuning.defaults.json.
const (
	DefaultChainToleranceMeters = 0.10
	DefaultChainMaxLength       = 6

	DefaultTwoComponentEpsMeters   = 0.13
	DefaultMultiComponentEpsMeters = 3.5
	DefaultClusterMinPoints        = 1

	DefaultIndexMinLengthMeters = 0.3
	DefaultIndexMaxLengthMeters = 8.0

	DefaultBench5LengthMeters        = 2.98
	DefaultBench5WidthMeters         = 1.69
	DefaultBench7LengthMeters        = 2.32
	DefaultBench7WidthMeters         = 1.60
	DefaultSingleBenchToleranceRatio = 0.02

	DefaultFallbackMinVertices     = 5
	DefaultFallbackMinLengthMeters = 5.0
	DefaultFallbackMaxLengthMeters = 10.0

	DefaultBackrestOffsetMinMeters      = 0.25
	DefaultBackrestOffsetMaxMeters      = 0.40
	DefaultBackrestAngleToleranceDeg    = 4.0
	DefaultBackrestStraightnessMin      = 0.98
	DefaultBackrestLengthToleranceRatio = 0.02

	DefaultTwoComponentOffsetMinMeters = 0.03
	DefaultTwoComponentOffsetMaxMeters = 0.13

	DefaultRectParallelToleranceDeg   = 4.0
	DefaultRectOrthogonalToleranceDeg = 5.0
	DefaultRectLengthToleranceRatio   = 0.02

	DefaultTrashBinMinVertices     = 70
	DefaultTrashBinMaxVertices     = 77
	DefaultTrashBinExactVertices   = 73
	DefaultTrashBinMinAspect       = 0.95
	DefaultTrashBinMinLengthMeters = 2.1
	DefaultTrashBinMaxLengthMeters = 2.4

	DefaultExclusionMinAspect   = 0.98
	DefaultExclusionMinVertices = 120
	DefaultExclusionTurnMinDeg  = 0.0
	DefaultExclusionTurnMaxDeg  = 1440.0
)

// TuningConfig represents the root configuration for detection thresholds.
// Every field is optional; the Get* accessors fall back to the defaults above
// so partial files are safe.
type TuningConfig struct {
	// Chain-following adjacency
	ChainToleranceMeters *float64 `json:"chain_tolerance_meters,omitempty"`
	ChainMaxLength       *int     `json:"chain_max_length,omitempty"`

	// Density clustering
	TwoComponentEpsMeters   *float64 `json:"two_component_eps_meters,omitempty"`
	MultiComponentEpsMeters *float64 `json:"multi_component_eps_meters,omitempty"`
	ClusterMinPoints        *int     `json:"cluster_min_points,omitempty"`
	MultiComponentStrategy  *string  `json:"multi_component_strategy,omitempty"` // "dbscan" or "chain"

	// Candidate pool for multi-piece benches
	IndexMinLengthMeters *float64 `json:"index_min_length_meters,omitempty"`
	IndexMaxLengthMeters *float64 `json:"index_max_length_meters,omitempty"`

	// Single-component benches
	Bench5LengthMeters        *float64 `json:"bench5_length_meters,omitempty"`
	Bench5WidthMeters         *float64 `json:"bench5_width_meters,omitempty"`
	Bench7LengthMeters        *float64 `json:"bench7_length_meters,omitempty"`
	Bench7WidthMeters         *float64 `json:"bench7_width_meters,omitempty"`
	SingleBenchToleranceRatio *float64 `json:"single_bench_tolerance_ratio,omitempty"`
	FallbackEnabled           *bool    `json:"single_bench_fallback_enabled,omitempty"`
	FallbackMinVertices       *int     `json:"single_bench_fallback_min_vertices,omitempty"`
	FallbackMinLengthMeters   *float64 `json:"single_bench_fallback_min_length_meters,omitempty"`
	FallbackMaxLengthMeters   *float64 `json:"single_bench_fallback_max_length_meters,omitempty"`

	// Backrest validator
	BackrestOffsetMinMeters      *float64 `json:"backrest_offset_min_meters,omitempty"`
	BackrestOffsetMaxMeters      *float64 `json:"backrest_offset_max_meters,omitempty"`
	BackrestAngleToleranceDeg    *float64 `json:"backrest_angle_tolerance_deg,omitempty"`
	BackrestStraightnessMin      *float64 `json:"backrest_straightness_min,omitempty"`
	BackrestLengthToleranceRatio *float64 `json:"backrest_length_tolerance_ratio,omitempty"`
	TwoComponentOffsetMinMeters  *float64 `json:"two_component_offset_min_meters,omitempty"`
	TwoComponentOffsetMaxMeters  *float64 `json:"two_component_offset_max_meters,omitempty"`

	// Rectangle validator
	RectParallelToleranceDeg   *float64 `json:"rect_parallel_tolerance_deg,omitempty"`
	RectOrthogonalToleranceDeg *float64 `json:"rect_orthogonal_tolerance_deg,omitempty"`
	RectLengthToleranceRatio   *float64 `json:"rect_length_tolerance_ratio,omitempty"`

	// Trash bins
	TrashBinMinVertices     *int     `json:"trash_bin_min_vertices,omitempty"`
	TrashBinMaxVertices     *int     `json:"trash_bin_max_vertices,omitempty"`
	TrashBinExactVertices   *int     `json:"trash_bin_exact_vertices,omitempty"`
	TrashBinMinAspect       *float64 `json:"trash_bin_min_aspect,omitempty"`
	TrashBinMinLengthMeters *float64 `json:"trash_bin_min_length_meters,omitempty"`
	TrashBinMaxLengthMeters *float64 `json:"trash_bin_max_length_meters,omitempty"`

	// Exclusion filter
	ExclusionMinAspect   *float64 `json:"exclusion_min_aspect,omitempty"`
	ExclusionMinVertices *int     `json:"exclusion_min_vertices,omitempty"`
	ExclusionTurnMinDeg  *float64 `json:"exclusion_turn_min_deg,omitempty"`
	ExclusionTurnMaxDeg  *float64 `json:"exclusion_turn_max_deg,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

func orDefault[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated from
// the compiled-in defaults.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		ChainToleranceMeters: ptrFloat64(DefaultChainToleranceMeters),
		ChainMaxLength:       ptrInt(DefaultChainMaxLength),

		TwoComponentEpsMeters:   ptrFloat64(DefaultTwoComponentEpsMeters),
		MultiComponentEpsMeters: ptrFloat64(DefaultMultiComponentEpsMeters),
		ClusterMinPoints:        ptrInt(DefaultClusterMinPoints),
		MultiComponentStrategy:  ptrString(StrategyDBSCAN),

		IndexMinLengthMeters: ptrFloat64(DefaultIndexMinLengthMeters),
		IndexMaxLengthMeters: ptrFloat64(DefaultIndexMaxLengthMeters),

		Bench5LengthMeters:        ptrFloat64(DefaultBench5LengthMeters),
		Bench5WidthMeters:         ptrFloat64(DefaultBench5WidthMeters),
		Bench7LengthMeters:        ptrFloat64(DefaultBench7LengthMeters),
		Bench7WidthMeters:         ptrFloat64(DefaultBench7WidthMeters),
		SingleBenchToleranceRatio: ptrFloat64(DefaultSingleBenchToleranceRatio),
		FallbackEnabled:           ptrBool(false),
		FallbackMinVertices:       ptrInt(DefaultFallbackMinVertices),
		FallbackMinLengthMeters:   ptrFloat64(DefaultFallbackMinLengthMeters),
		FallbackMaxLengthMeters:   ptrFloat64(DefaultFallbackMaxLengthMeters),

		BackrestOffsetMinMeters:      ptrFloat64(DefaultBackrestOffsetMinMeters),
		BackrestOffsetMaxMeters:      ptrFloat64(DefaultBackrestOffsetMaxMeters),
		BackrestAngleToleranceDeg:    ptrFloat64(DefaultBackrestAngleToleranceDeg),
		BackrestStraightnessMin:      ptrFloat64(DefaultBackrestStraightnessMin),
		BackrestLengthToleranceRatio: ptrFloat64(DefaultBackrestLengthToleranceRatio),
		TwoComponentOffsetMinMeters:  ptrFloat64(DefaultTwoComponentOffsetMinMeters),
		TwoComponentOffsetMaxMeters:  ptrFloat64(DefaultTwoComponentOffsetMaxMeters),

		RectParallelToleranceDeg:   ptrFloat64(DefaultRectParallelToleranceDeg),
		RectOrthogonalToleranceDeg: ptrFloat64(DefaultRectOrthogonalToleranceDeg),
		RectLengthToleranceRatio:   ptrFloat64(DefaultRectLengthToleranceRatio),

		TrashBinMinVertices:     ptrInt(DefaultTrashBinMinVertices),
		TrashBinMaxVertices:     ptrInt(DefaultTrashBinMaxVertices),
		TrashBinExactVertices:   ptrInt(DefaultTrashBinExactVertices),
		TrashBinMinAspect:       ptrFloat64(DefaultTrashBinMinAspect),
		TrashBinMinLengthMeters: ptrFloat64(DefaultTrashBinMinLengthMeters),
		TrashBinMaxLengthMeters: ptrFloat64(DefaultTrashBinMaxLengthMeters),

		ExclusionMinAspect:   ptrFloat64(DefaultExclusionMinAspect),
		ExclusionMinVertices: ptrInt(DefaultExclusionMinVertices),
		ExclusionTurnMinDeg:  ptrFloat64(DefaultExclusionTurnMinDeg),
		ExclusionTurnMaxDeg:  ptrFloat64(DefaultExclusionTurnMaxDeg),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/<pkg>/
		"../../../" + DefaultConfigPath,    // from cmd/<tool>/ nested packages
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set. Resolved values (including
// defaults) are cross-checked as well, so a file that only moves one end of a
// band past the other default end is also rejected.
func (c *TuningConfig) Validate() error {
	positive := []struct {
		name string
		v    *float64
	}{
		{"chain_tolerance_meters", c.ChainToleranceMeters},
		{"two_component_eps_meters", c.TwoComponentEpsMeters},
		{"multi_component_eps_meters", c.MultiComponentEpsMeters},
		{"bench5_length_meters", c.Bench5LengthMeters},
		{"bench5_width_meters", c.Bench5WidthMeters},
		{"bench7_length_meters", c.Bench7LengthMeters},
		{"bench7_width_meters", c.Bench7WidthMeters},
		{"single_bench_tolerance_ratio", c.SingleBenchToleranceRatio},
		{"single_bench_fallback_max_length_meters", c.FallbackMaxLengthMeters},
		{"backrest_offset_max_meters", c.BackrestOffsetMaxMeters},
		{"backrest_angle_tolerance_deg", c.BackrestAngleToleranceDeg},
		{"backrest_straightness_min", c.BackrestStraightnessMin},
		{"backrest_length_tolerance_ratio", c.BackrestLengthToleranceRatio},
		{"two_component_offset_max_meters", c.TwoComponentOffsetMaxMeters},
		{"rect_parallel_tolerance_deg", c.RectParallelToleranceDeg},
		{"rect_orthogonal_tolerance_deg", c.RectOrthogonalToleranceDeg},
		{"rect_length_tolerance_ratio", c.RectLengthToleranceRatio},
		{"trash_bin_min_aspect", c.TrashBinMinAspect},
		{"trash_bin_max_length_meters", c.TrashBinMaxLengthMeters},
		{"exclusion_min_aspect", c.ExclusionMinAspect},
		{"exclusion_turn_max_deg", c.ExclusionTurnMaxDeg},
	}
	for _, f := range positive {
		if f.v == nil {
			continue
		}
		if math.IsNaN(*f.v) || math.IsInf(*f.v, 0) || *f.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalid, f.name, *f.v)
		}
	}

	nonNegative := []struct {
		name string
		v    *float64
	}{
		{"index_min_length_meters", c.IndexMinLengthMeters},
		{"index_max_length_meters", c.IndexMaxLengthMeters},
		{"single_bench_fallback_min_length_meters", c.FallbackMinLengthMeters},
		{"backrest_offset_min_meters", c.BackrestOffsetMinMeters},
		{"two_component_offset_min_meters", c.TwoComponentOffsetMinMeters},
		{"trash_bin_min_length_meters", c.TrashBinMinLengthMeters},
		{"exclusion_turn_min_deg", c.ExclusionTurnMinDeg},
	}
	for _, f := range nonNegative {
		if f.v == nil {
			continue
		}
		if math.IsNaN(*f.v) || math.IsInf(*f.v, 0) || *f.v < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %v", ErrInvalid, f.name, *f.v)
		}
	}

	counts := []struct {
		name string
		v    *int
	}{
		{"chain_max_length", c.ChainMaxLength},
		{"cluster_min_points", c.ClusterMinPoints},
		{"single_bench_fallback_min_vertices", c.FallbackMinVertices},
		{"trash_bin_min_vertices", c.TrashBinMinVertices},
		{"trash_bin_max_vertices", c.TrashBinMaxVertices},
		{"trash_bin_exact_vertices", c.TrashBinExactVertices},
		{"exclusion_min_vertices", c.ExclusionMinVertices},
	}
	for _, f := range counts {
		if f.v != nil && *f.v < 1 {
			return fmt.Errorf("%w: %s must be at least 1, got %d", ErrInvalid, f.name, *f.v)
		}
	}

	if c.BackrestStraightnessMin != nil && *c.BackrestStraightnessMin > 1 {
		return fmt.Errorf("%w: backrest_straightness_min must be <= 1, got %v", ErrInvalid, *c.BackrestStraightnessMin)
	}
	if c.MultiComponentStrategy != nil {
		switch *c.MultiComponentStrategy {
		case StrategyDBSCAN, StrategyChain:
		default:
			return fmt.Errorf("%w: multi_component_strategy must be %q or %q, got %q",
				ErrInvalid, StrategyDBSCAN, StrategyChain, *c.MultiComponentStrategy)
		}
	}

	bands := []struct {
		name     string
		min, max float64
	}{
		{"backrest_offset", c.GetBackrestOffsetMinMeters(), c.GetBackrestOffsetMaxMeters()},
		{"two_component_offset", c.GetTwoComponentOffsetMinMeters(), c.GetTwoComponentOffsetMaxMeters()},
		{"trash_bin_length", c.GetTrashBinMinLengthMeters(), c.GetTrashBinMaxLengthMeters()},
		{"single_bench_fallback_length", c.GetFallbackMinLengthMeters(), c.GetFallbackMaxLengthMeters()},
		{"exclusion_turn", c.GetExclusionTurnMinDeg(), c.GetExclusionTurnMaxDeg()},
	}
	for _, b := range bands {
		if b.min > b.max {
			return fmt.Errorf("%w: %s min %v exceeds max %v", ErrInvalid, b.name, b.min, b.max)
		}
	}
	if maxLen := c.GetIndexMaxLengthMeters(); maxLen > 0 && c.GetIndexMinLengthMeters() > maxLen {
		return fmt.Errorf("%w: index length min %v exceeds max %v", ErrInvalid, c.GetIndexMinLengthMeters(), maxLen)
	}
	if c.GetTrashBinMinVertices() > c.GetTrashBinMaxVertices() {
		return fmt.Errorf("%w: trash bin vertex band [%d, %d] is empty",
			ErrInvalid, c.GetTrashBinMinVertices(), c.GetTrashBinMaxVertices())
	}

	return nil
}

// GetChainToleranceMeters returns the chain-following adjacency tolerance.
func (c *TuningConfig) GetChainToleranceMeters() float64 {
	return orDefault(c.ChainToleranceMeters, DefaultChainToleranceMeters)
}

// GetChainMaxLength returns the maximum number of components in one chain.
func (c *TuningConfig) GetChainMaxLength() int {
	return orDefault(c.ChainMaxLength, DefaultChainMaxLength)
}

// GetTwoComponentEpsMeters returns the tight DBSCAN radius.
func (c *TuningConfig) GetTwoComponentEpsMeters() float64 {
	return orDefault(c.TwoComponentEpsMeters, DefaultTwoComponentEpsMeters)
}

// GetMultiComponentEpsMeters returns the loose DBSCAN radius.
func (c *TuningConfig) GetMultiComponentEpsMeters() float64 {
	return orDefault(c.MultiComponentEpsMeters, DefaultMultiComponentEpsMeters)
}

// GetClusterMinPoints returns the DBSCAN minimum cluster size.
func (c *TuningConfig) GetClusterMinPoints() int {
	return orDefault(c.ClusterMinPoints, DefaultClusterMinPoints)
}

// GetMultiComponentStrategy returns the clustering strategy for 4-6 piece benches.
func (c *TuningConfig) GetMultiComponentStrategy() string {
	if c.MultiComponentStrategy == nil || *c.MultiComponentStrategy == "" {
		return StrategyDBSCAN
	}
	return *c.MultiComponentStrategy
}

func (c *TuningConfig) GetIndexMinLengthMeters() float64 {
	return orDefault(c.IndexMinLengthMeters, DefaultIndexMinLengthMeters)
}

func (c *TuningConfig) GetIndexMaxLengthMeters() float64 {
	return orDefault(c.IndexMaxLengthMeters, DefaultIndexMaxLengthMeters)
}

func (c *TuningConfig) GetBench5LengthMeters() float64 {
	return orDefault(c.Bench5LengthMeters, DefaultBench5LengthMeters)
}

func (c *TuningConfig) GetBench5WidthMeters() float64 {
	return orDefault(c.Bench5WidthMeters, DefaultBench5WidthMeters)
}

func (c *TuningConfig) GetBench7LengthMeters() float64 {
	return orDefault(c.Bench7LengthMeters, DefaultBench7LengthMeters)
}

func (c *TuningConfig) GetBench7WidthMeters() float64 {
	return orDefault(c.Bench7WidthMeters, DefaultBench7WidthMeters)
}

func (c *TuningConfig) GetSingleBenchToleranceRatio() float64 {
	return orDefault(c.SingleBenchToleranceRatio, DefaultSingleBenchToleranceRatio)
}

// GetFallbackEnabled reports whether the length-only single bench rule runs.
func (c *TuningConfig) GetFallbackEnabled() bool {
	return orDefault(c.FallbackEnabled, false)
}

func (c *TuningConfig) GetFallbackMinVertices() int {
	return orDefault(c.FallbackMinVertices, DefaultFallbackMinVertices)
}

func (c *TuningConfig) GetFallbackMinLengthMeters() float64 {
	return orDefault(c.FallbackMinLengthMeters, DefaultFallbackMinLengthMeters)
}

func (c *TuningConfig) GetFallbackMaxLengthMeters() float64 {
	return orDefault(c.FallbackMaxLengthMeters, DefaultFallbackMaxLengthMeters)
}

func (c *TuningConfig) GetBackrestOffsetMinMeters() float64 {
	return orDefault(c.BackrestOffsetMinMeters, DefaultBackrestOffsetMinMeters)
}

func (c *TuningConfig) GetBackrestOffsetMaxMeters() float64 {
	return orDefault(c.BackrestOffsetMaxMeters, DefaultBackrestOffsetMaxMeters)
}

func (c *TuningConfig) GetBackrestAngleToleranceDeg() float64 {
	return orDefault(c.BackrestAngleToleranceDeg, DefaultBackrestAngleToleranceDeg)
}

func (c *TuningConfig) GetBackrestStraightnessMin() float64 {
	return orDefault(c.BackrestStraightnessMin, DefaultBackrestStraightnessMin)
}

func (c *TuningConfig) GetBackrestLengthToleranceRatio() float64 {
	return orDefault(c.BackrestLengthToleranceRatio, DefaultBackrestLengthToleranceRatio)
}

func (c *TuningConfig) GetTwoComponentOffsetMinMeters() float64 {
	return orDefault(c.TwoComponentOffsetMinMeters, DefaultTwoComponentOffsetMinMeters)
}

func (c *TuningConfig) GetTwoComponentOffsetMaxMeters() float64 {
	return orDefault(c.TwoComponentOffsetMaxMeters, DefaultTwoComponentOffsetMaxMeters)
}

func (c *TuningConfig) GetRectParallelToleranceDeg() float64 {
	return orDefault(c.RectParallelToleranceDeg, DefaultRectParallelToleranceDeg)
}

func (c *TuningConfig) GetRectOrthogonalToleranceDeg() float64 {
	return orDefault(c.RectOrthogonalToleranceDeg, DefaultRectOrthogonalToleranceDeg)
}

func (c *TuningConfig) GetRectLengthToleranceRatio() float64 {
	return orDefault(c.RectLengthToleranceRatio, DefaultRectLengthToleranceRatio)
}

func (c *TuningConfig) GetTrashBinMinVertices() int {
	return orDefault(c.TrashBinMinVertices, DefaultTrashBinMinVertices)
}

func (c *TuningConfig) GetTrashBinMaxVertices() int {
	return orDefault(c.TrashBinMaxVertices, DefaultTrashBinMaxVertices)
}

// GetTrashBinExactVertices returns the vertex count that earns the higher
// trash bin confidence.
func (c *TuningConfig) GetTrashBinExactVertices() int {
	return orDefault(c.TrashBinExactVertices, DefaultTrashBinExactVertices)
}

func (c *TuningConfig) GetTrashBinMinAspect() float64 {
	return orDefault(c.TrashBinMinAspect, DefaultTrashBinMinAspect)
}

func (c *TuningConfig) GetTrashBinMinLengthMeters() float64 {
	return orDefault(c.TrashBinMinLengthMeters, DefaultTrashBinMinLengthMeters)
}

func (c *TuningConfig) GetTrashBinMaxLengthMeters() float64 {
	return orDefault(c.TrashBinMaxLengthMeters, DefaultTrashBinMaxLengthMeters)
}

func (c *TuningConfig) GetExclusionMinAspect() float64 {
	return orDefault(c.ExclusionMinAspect, DefaultExclusionMinAspect)
}

func (c *TuningConfig) GetExclusionMinVertices() int {
	return orDefault(c.ExclusionMinVertices, DefaultExclusionMinVertices)
}

func (c *TuningConfig) GetExclusionTurnMinDeg() float64 {
	return orDefault(c.ExclusionTurnMinDeg, DefaultExclusionTurnMinDeg)
}

func (c *TuningConfig) GetExclusionTurnMaxDeg() float64 {
	return orDefault(c.ExclusionTurnMaxDeg, DefaultExclusionTurnMaxDeg)
}
