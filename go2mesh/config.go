package go2mesh

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the tunables of the mesh kernel.
//
// A Config is passed explicitly to whatever needs it (mesh, reader, silhouette extractor) so that independent
// mesh universes can coexist in one process.
type Config struct {
	RandomizedMinEdges int     `yaml:"randomized_min_edges"` // edge count at which randomized silhouette extraction kicks in
	RandomizedMinFaces int     `yaml:"randomized_min_faces"` // face count at which randomized zero-crossing extraction kicks in
	RandomSils         bool    `yaml:"random_sils"`          // allow randomized silhouette extraction
	FavorDegreeSix     bool    `yaml:"favor_degree_six"`     // bias edge swaps toward degree-6 vertices
	SwapDotThresh      float64 `yaml:"swap_dot_thresh"`      // min dot of adjacent face normals for a preferable swap
	NoFixOrientation   bool    `yaml:"no_fix_orientation"`   // leave inconsistently oriented faces as they are
	ShowSecondaryFaces bool    `yaml:"show_secondary_faces"` // include secondary faces in silhouettes
	UVResolution       float64 `yaml:"uv_resolution"`        // round loaded UVs to this resolution (0 disables)
	BuildVertStrips    bool    `yaml:"build_vert_strips"`    // build vertex strips for lone vertices after load

	DebugMeshOps     bool `yaml:"debug_mesh_ops"`
	DebugEdgeSwap    bool `yaml:"debug_edge_swap"`
	DebugNonManifold bool `yaml:"debug_non_manifold"`
	DebugSils        bool `yaml:"debug_sils"`
	DebugPatches     bool `yaml:"debug_patches"`
}

// DefaultConfig returns the stock kernel settings.
func DefaultConfig() Config {
	return Config{
		RandomizedMinEdges: 4000,
		RandomizedMinFaces: 4000,
		RandomSils:         true,
		SwapDotThresh:      0.5, // cos(60°)
	}
}

// ParseConfig decodes YAML over DefaultConfig().
func ParseConfig(yamlSrc []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(yamlSrc, &cfg); err != nil {
		return cfg, errors.Wrap(ErrBadConfig, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadConfig reads and decodes the given YAML file over DefaultConfig().
func LoadConfig(pathname string) (Config, error) {
	buf, err := os.ReadFile(pathname)
	if err != nil {
		return DefaultConfig(), errors.Wrapf(err, "reading config %q", pathname)
	}
	return ParseConfig(buf)
}

func (cfg *Config) Validate() error {
	if cfg.RandomizedMinEdges < 0 || cfg.RandomizedMinFaces < 0 {
		return errors.Wrap(ErrBadConfig, "randomized thresholds must be >= 0")
	}
	if cfg.SwapDotThresh < -1 || cfg.SwapDotThresh > 1 {
		return errors.Wrap(ErrBadConfig, "swap_dot_thresh must be in [-1,1]")
	}
	if cfg.UVResolution < 0 {
		return errors.Wrap(ErrBadConfig, "uv_resolution must be >= 0")
	}
	return nil
}

// Encode returns this config as YAML.
func (cfg Config) Encode() ([]byte, error) {
	return yaml.Marshal(cfg)
}
