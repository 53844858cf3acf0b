// Package config loads bevel's settings file and gear-set files.
//
// Both accept JSON or YAML. Every field is optional; the Get* methods
// fall back to the built-in defaults for anything a file leaves out, so
// partial configs are safe.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/chazu/bevel/pkg/gear"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where the CLI looks for a settings file when none
// is given.
const DefaultConfigPath = "bevel.yaml"

// maxFileSize caps the size of any file this package reads.
const maxFileSize = 1 * 1024 * 1024 // 1MB

// Defaults used by the Get* methods.
const (
	DefaultMeshCells   = 200
	DefaultArcSegments = 8
	DefaultOutputDir   = "out"
	DefaultCatalogPath = "bevel.db"
)

// PairConfig holds gear pair parameters. The pressure angle is a preset
// name ("20 deg") or a number of degrees.
type PairConfig struct {
	Module        *float64 `json:"module,omitempty" yaml:"module,omitempty"`
	WheelTeeth    *int     `json:"wheel_teeth,omitempty" yaml:"wheel_teeth,omitempty"`
	PinionTeeth   *int     `json:"pinion_teeth,omitempty" yaml:"pinion_teeth,omitempty"`
	PressureAngle *string  `json:"pressure_angle,omitempty" yaml:"pressure_angle,omitempty"`
	Backlash      *float64 `json:"backlash,omitempty" yaml:"backlash,omitempty"`
	FaceThickness *float64 `json:"face_thickness,omitempty" yaml:"face_thickness,omitempty"`
	BoreDiameter  *float64 `json:"bore_diameter,omitempty" yaml:"bore_diameter,omitempty"`
}

// Config is the root of the settings file.
type Config struct {
	Pair        *PairConfig `json:"pair,omitempty" yaml:"pair,omitempty"`
	MeshCells   *int        `json:"mesh_cells,omitempty" yaml:"mesh_cells,omitempty"`
	ArcSegments *int        `json:"arc_segments,omitempty" yaml:"arc_segments,omitempty"`
	OutputDir   *string     `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	CatalogPath *string     `json:"catalog_path,omitempty" yaml:"catalog_path,omitempty"`
	Verbose     *bool       `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// NamedPair is one entry of a gear-set file.
type NamedPair struct {
	Name       string `json:"name" yaml:"name"`
	PairConfig `yaml:",inline"`
}

// GearSet is the root of a gear-set file.
type GearSet struct {
	Pairs []NamedPair `json:"pairs" yaml:"pairs"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }
func ptrBool(v bool) *bool          { return &v }

// Default returns a config with every field set to its default value.
func Default() *Config {
	p := gear.DefaultPair()
	return &Config{
		Pair: &PairConfig{
			Module:        ptrFloat64(p.Module),
			WheelTeeth:    ptrInt(p.WheelTeeth),
			PinionTeeth:   ptrInt(p.PinionTeeth),
			PressureAngle: ptrString(string(gear.Preset20)),
			Backlash:      ptrFloat64(p.Backlash),
			FaceThickness: ptrFloat64(p.FaceThickness),
			BoreDiameter:  ptrFloat64(p.BoreDiameter),
		},
		MeshCells:   ptrInt(DefaultMeshCells),
		ArcSegments: ptrInt(DefaultArcSegments),
		OutputDir:   ptrString(DefaultOutputDir),
		CatalogPath: ptrString(DefaultCatalogPath),
		Verbose:     ptrBool(false),
	}
}

// readFile checks the extension and size of path and returns its contents
// and whether it is YAML.
func readFile(path string) (data []byte, isYAML bool, err error) {
	cleanPath := filepath.Clean(path)
	switch ext := filepath.Ext(cleanPath); ext {
	case ".json":
	case ".yaml", ".yml":
		isYAML = true
	default:
		return nil, false, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, false, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, false, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err = os.ReadFile(cleanPath)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read config file: %w", err)
	}
	return data, isYAML, nil
}

func decode(data []byte, isYAML bool, v any) error {
	if isYAML {
		return yaml.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

// Load reads a settings file and validates it.
func Load(path string) (*Config, error) {
	data, isYAML, err := readFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := decode(data, isYAML, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads path when it exists and returns the defaults when it
// does not.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if c.MeshCells != nil && (*c.MeshCells < 8 || *c.MeshCells > 2000) {
		return fmt.Errorf("mesh_cells must be between 8 and 2000, got %d", *c.MeshCells)
	}
	if c.ArcSegments != nil && *c.ArcSegments < 1 {
		return fmt.Errorf("arc_segments must be at least 1, got %d", *c.ArcSegments)
	}
	if c.OutputDir != nil && *c.OutputDir == "" {
		return errors.New("output_dir must not be empty")
	}
	if _, err := c.GetPair(); err != nil {
		return fmt.Errorf("pair: %w", err)
	}
	return nil
}

// GetPair returns the configured pair over the defaults. The pair has
// passed PairSpec.Validate.
func (c *Config) GetPair() (gear.PairSpec, error) {
	return c.Pair.Spec()
}

// Spec overlays p on the default pair and validates the result. A nil p
// gives the default pair.
func (p *PairConfig) Spec() (gear.PairSpec, error) {
	spec := gear.DefaultPair()
	if p != nil {
		if p.Module != nil {
			spec.Module = *p.Module
		}
		if p.WheelTeeth != nil {
			spec.WheelTeeth = *p.WheelTeeth
		}
		if p.PinionTeeth != nil {
			spec.PinionTeeth = *p.PinionTeeth
		}
		if p.PressureAngle != nil {
			a, err := gear.ParsePressureAngle(*p.PressureAngle)
			if err != nil {
				return gear.PairSpec{}, err
			}
			spec.PressureAngle = a
		}
		if p.Backlash != nil {
			spec.Backlash = *p.Backlash
		}
		if p.FaceThickness != nil {
			spec.FaceThickness = *p.FaceThickness
		}
		if p.BoreDiameter != nil {
			spec.BoreDiameter = *p.BoreDiameter
		}
	}
	if err := spec.Validate(); err != nil {
		return gear.PairSpec{}, err
	}
	return spec, nil
}

// GetMeshCells returns the marching cubes resolution.
func (c *Config) GetMeshCells() int {
	if c.MeshCells == nil {
		return DefaultMeshCells
	}
	return *c.MeshCells
}

// GetArcSegments returns the number of segments per sampled arc.
func (c *Config) GetArcSegments() int {
	if c.ArcSegments == nil {
		return DefaultArcSegments
	}
	return *c.ArcSegments
}

// GetOutputDir returns the directory build output goes to.
func (c *Config) GetOutputDir() string {
	if c.OutputDir == nil {
		return DefaultOutputDir
	}
	return *c.OutputDir
}

// GetCatalogPath returns the catalog database path.
func (c *Config) GetCatalogPath() string {
	if c.CatalogPath == nil {
		return DefaultCatalogPath
	}
	return *c.CatalogPath
}

// GetVerbose reports whether debug logging is on.
func (c *Config) GetVerbose() bool {
	return c.Verbose != nil && *c.Verbose
}

// LoadGearSets reads a gear-set file and returns its pairs by name, in
// file order. Names must be unique and non-empty.
func LoadGearSets(path string) ([]string, []gear.PairSpec, error) {
	data, isYAML, err := readFile(path)
	if err != nil {
		return nil, nil, err
	}
	var set GearSet
	if err := decode(data, isYAML, &set); err != nil {
		return nil, nil, fmt.Errorf("failed to parse gear set: %w", err)
	}
	if len(set.Pairs) == 0 {
		return nil, nil, fmt.Errorf("gear set %s has no pairs", path)
	}

	names := make([]string, 0, len(set.Pairs))
	specs := make([]gear.PairSpec, 0, len(set.Pairs))
	seen := make(map[string]bool)
	for i, np := range set.Pairs {
		name := np.Name
		if name == "" {
			return nil, nil, fmt.Errorf("gear set entry %d has no name", i)
		}
		if seen[name] {
			return nil, nil, fmt.Errorf("gear set entry %d: duplicate name %q", i, name)
		}
		seen[name] = true
		spec, err := np.Spec()
		if err != nil {
			return nil, nil, fmt.Errorf("gear set entry %q: %w", name, err)
		}
		names = append(names, name)
		specs = append(specs, spec)
	}
	return names, specs, nil
}

// FormatPressureAngle renders radians the way config files write them.
func FormatPressureAngle(rad float64) string {
	if p := gear.PresetFor(rad); p != gear.PresetCustom {
		return string(p)
	}
	return strconv.FormatFloat(gear.Degrees(rad), 'f', -1, 64)
}
