// Package config holds operator defaults for the server.
//
// Defaults are compiled in, may be overridden by a TOML file named in
// PIXEL_MCP_CONFIG, and the vision backend may be overridden again by
// PIXEL_MCP_BACKEND. Tool arguments override all of these per call.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ironsheep/pixel-tools-mcp/internal/corner"
	"github.com/ironsheep/pixel-tools-mcp/internal/edge"
	"github.com/ironsheep/pixel-tools-mcp/internal/imaging"
	"github.com/ironsheep/pixel-tools-mcp/internal/pixel"
	"github.com/ironsheep/pixel-tools-mcp/internal/threshold"
	"github.com/ironsheep/pixel-tools-mcp/internal/vision"
)

// Environment variables read by FromEnv.
const (
	PathEnv    = "PIXEL_MCP_CONFIG"
	BackendEnv = "PIXEL_MCP_BACKEND"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full set of operator defaults.
type Config struct {
	// Backend names the vision runtime: "native" or "opencv".
	Backend string `toml:"backend"`

	// MarkerColor is the hex color used to circle keypoints.
	MarkerColor string `toml:"marker_color"`

	Edge      EdgeConfig               `toml:"edge"`
	Laplacian LaplacianConfig          `toml:"laplacian"`
	Bradley   threshold.BradleyOptions `toml:"bradley"`
	Moravec   corner.MoravecOptions    `toml:"moravec"`
	Harris    vision.HarrisOptions     `toml:"harris"`
	Canny     CannyConfig              `toml:"canny"`
	FAST      FASTConfig               `toml:"fast"`
}

// EdgeConfig configures the gradient operators.
type EdgeConfig struct {
	// Thresholds maps operator name to magnitude threshold.
	Thresholds map[string]int `toml:"thresholds"`
	// RobertsAnchor is "top-left" or "bottom-right".
	RobertsAnchor string `toml:"roberts_anchor"`
}

// LaplacianConfig configures the zero-crossing detector.
type LaplacianConfig struct {
	// Neighbors selects the kernel: 8 or 4.
	Neighbors int     `toml:"neighbors"`
	Factor    float64 `toml:"factor"`
	MinPairs  int     `toml:"min_pairs"`
	// Axial is "threshold", "sign-only" or "never".
	Axial string `toml:"axial"`
}

// CannyConfig holds the hysteresis thresholds.
type CannyConfig struct {
	Low  float64 `toml:"low"`
	High float64 `toml:"high"`
}

// FASTConfig configures FAST keypoints.
type FASTConfig struct {
	Threshold int  `toml:"threshold"`
	Nonmax    bool `toml:"nonmax"`
}

// Default returns the compiled-in defaults.
func Default() *Config {
	lap := edge.DefaultLaplacianOptions()
	return &Config{
		Backend:     vision.BackendNative,
		MarkerColor: imaging.DefaultMarkerColor,
		Edge: EdgeConfig{
			Thresholds: map[string]int{
				"roberts": edge.RobertsThreshold,
				"prewitt": edge.PrewittThreshold,
				"sobel":   edge.SobelThreshold,
				"scharr":  edge.ScharrThreshold,
			},
			RobertsAnchor: pixel.AnchorTopLeft.String(),
		},
		Laplacian: LaplacianConfig{
			Neighbors: 8,
			Factor:    lap.Factor,
			MinPairs:  lap.MinPairs,
			Axial:     lap.Axial.String(),
		},
		Bradley: threshold.DefaultBradleyOptions(),
		Moravec: corner.DefaultMoravecOptions(),
		Harris:  vision.DefaultHarrisOptions(),
		Canny:   CannyConfig{Low: 50, High: 150},
		FAST:    FASTConfig{Threshold: 45, Nonmax: true},
	}
}

// Load reads a TOML file over the defaults. Keys missing from the file keep
// their default values; unknown keys are an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv loads the file named by PathEnv, or the defaults when it is
// unset, then applies BackendEnv.
func FromEnv() (*Config, error) {
	cfg := Default()
	if path := os.Getenv(PathEnv); path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if backend := os.Getenv(BackendEnv); backend != "" {
		cfg.Backend = backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Backend) {
	case vision.BackendNative, vision.BackendOpenCV:
	default:
		return fmt.Errorf("%w: backend %q", ErrInvalid, c.Backend)
	}
	if _, err := imaging.ParseColor(c.MarkerColor); err != nil {
		return fmt.Errorf("%w: marker_color: %v", ErrInvalid, err)
	}
	for name, t := range c.Edge.Thresholds {
		if _, err := edge.Lookup(name); err != nil {
			return fmt.Errorf("%w: edge.thresholds: %v", ErrInvalid, err)
		}
		if t < 0 {
			return fmt.Errorf("%w: edge.thresholds.%s = %d", ErrInvalid, name, t)
		}
	}
	if _, err := c.Operator("roberts"); err != nil {
		return fmt.Errorf("%w: edge.roberts_anchor: %v", ErrInvalid, err)
	}
	if _, err := c.LaplacianOptions(); err != nil {
		return fmt.Errorf("%w: laplacian: %v", ErrInvalid, err)
	}
	if err := c.Bradley.Validate(); err != nil {
		return fmt.Errorf("%w: bradley: %v", ErrInvalid, err)
	}
	if err := c.Moravec.Validate(); err != nil {
		return fmt.Errorf("%w: moravec: %v", ErrInvalid, err)
	}
	if err := c.Harris.Validate(); err != nil {
		return fmt.Errorf("%w: harris: %v", ErrInvalid, err)
	}
	if c.Canny.Low < 0 || c.Canny.High < c.Canny.Low {
		return fmt.Errorf("%w: canny thresholds low=%v high=%v", ErrInvalid, c.Canny.Low, c.Canny.High)
	}
	if c.FAST.Threshold < 0 || c.FAST.Threshold > 255 {
		return fmt.Errorf("%w: fast.threshold %d", ErrInvalid, c.FAST.Threshold)
	}
	return nil
}

// Operator returns the named gradient operator with the configured
// threshold and, for Roberts, the configured anchor.
func (c *Config) Operator(name string) (edge.Operator, error) {
	op, err := edge.Lookup(name)
	if err != nil {
		return edge.Operator{}, err
	}
	if t, ok := c.Edge.Thresholds[op.Name]; ok {
		op.Threshold = t
	}
	if op.Name == "roberts" && c.Edge.RobertsAnchor != "" {
		anchor, err := pixel.ParseAnchor(c.Edge.RobertsAnchor)
		if err != nil {
			return edge.Operator{}, err
		}
		if anchor == pixel.AnchorCenter {
			return edge.Operator{}, pixel.Invalidf("roberts cannot be centered")
		}
		if op, err = op.WithAnchor(anchor); err != nil {
			return edge.Operator{}, err
		}
	}
	return op, nil
}

// LaplacianOptions converts the Laplacian section.
func (c *Config) LaplacianOptions() (edge.LaplacianOptions, error) {
	opts := edge.DefaultLaplacianOptions()
	switch c.Laplacian.Neighbors {
	case 8:
		opts.Kernel = edge.Laplacian8
	case 4:
		opts.Kernel = edge.Laplacian4
	default:
		return opts, pixel.Invalidf("laplacian neighbors %d (want 4 or 8)", c.Laplacian.Neighbors)
	}
	axial, err := edge.ParseAxialMode(c.Laplacian.Axial)
	if err != nil {
		return opts, err
	}
	opts.Axial = axial
	opts.Factor = c.Laplacian.Factor
	opts.MinPairs = c.Laplacian.MinPairs
	return opts, opts.Validate()
}
