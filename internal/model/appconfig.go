package model

import "time"

// EvolutionConfig holds parameters for the evolutionary metaheuristic.
type EvolutionConfig struct {
	Mu             int    `toml:"mu" json:"mu"`
	Lambda         int    `toml:"lambda" json:"lambda"`
	Selection      string `toml:"selection" json:"selection"` // "comma" or "plus"
	Seed           int64  `toml:"seed" json:"seed"`
	MaxGenerations int    `toml:"max_generations" json:"max_generations"` // 0 = until bound or cancel
	Decoder        string `toml:"decoder" json:"decoder"`
}

// BenchConfig holds benchmark-wide preferences and defaults.
type BenchConfig struct {
	// Per-run time limit, 0 = unlimited
	TimeLimit  Duration        `toml:"time_limit" json:"time_limit"`
	Algorithms []string        `toml:"algorithms" json:"algorithms"`
	LowerBound string          `toml:"lower_bound" json:"lower_bound"`
	Evolution  EvolutionConfig `toml:"evolution" json:"evolution"`

	// Output preferences
	ExportDir  string `toml:"export_dir" json:"export_dir"`
	ArchiveDir string `toml:"archive_dir" json:"archive_dir"`

	Cutting CutSettings `toml:"cutting" json:"cutting"`
}

// CutSettings controls the CNC cutting program written for a layout. Lengths
// are in layout units, rates in units per minute.
type CutSettings struct {
	ToolDiameter float64 `toml:"tool_diameter" json:"tool_diameter"`
	FeedRate     float64 `toml:"feed_rate" json:"feed_rate"`
	PlungeRate   float64 `toml:"plunge_rate" json:"plunge_rate"`
	SpindleSpeed int     `toml:"spindle_speed" json:"spindle_speed"`
	SafeZ        float64 `toml:"safe_z" json:"safe_z"`
	CutDepth     float64 `toml:"cut_depth" json:"cut_depth"`
	PassDepth    float64 `toml:"pass_depth" json:"pass_depth"`

	// Holding tabs left on the final pass
	TabsPerSide int     `toml:"tabs_per_side" json:"tabs_per_side"`
	TabWidth    float64 `toml:"tab_width" json:"tab_width"`
	TabHeight   float64 `toml:"tab_height" json:"tab_height"`

	// Arc approach and exit, 0 = straight plunge
	LeadInRadius  float64 `toml:"lead_in_radius" json:"lead_in_radius"`
	LeadOutRadius float64 `toml:"lead_out_radius" json:"lead_out_radius"`
	UseClimb      bool    `toml:"use_climb" json:"use_climb"` // clockwise around each part

	Profile string `toml:"profile" json:"profile"` // Generic, GRBL, Mach3 or LinuxCNC
}

// DefaultBenchConfig returns a BenchConfig populated with sensible defaults.
func DefaultBenchConfig() BenchConfig {
	return BenchConfig{
		TimeLimit:  Duration{Duration: 2 * time.Second},
		Algorithms: []string{"NextFit", "FirstFit", "GreedyNextFit", "GreedyFirstFit"},
		LowerBound: "dual-ccm",
		Evolution: EvolutionConfig{
			Mu:        10,
			Lambda:    40,
			Selection: "plus",
			Seed:      42,
			Decoder:   "FirstFit",
		},
		ExportDir:  "out",
		ArchiveDir: "runs",
		Cutting:    DefaultCutSettings(),
	}
}

// DefaultCutSettings returns settings for a 6 mm end mill cutting 18 mm
// sheet material in three passes.
func DefaultCutSettings() CutSettings {
	return CutSettings{
		ToolDiameter: 6,
		FeedRate:     1500,
		PlungeRate:   500,
		SpindleSpeed: 18000,
		SafeZ:        5,
		CutDepth:     18,
		PassDepth:    6,
		TabsPerSide:  0,
		TabWidth:     8,
		TabHeight:    2,
		UseClimb:     true,
		Profile:      "Generic",
	}
}

// Duration wraps time.Duration so it can be written as "1.5s" in config files.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string such as "500ms".
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText renders the duration in time.Duration string form.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
