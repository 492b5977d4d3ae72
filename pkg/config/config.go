// Package config loads the roadgraph YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/azybler/roadgraph/pkg/graph"
	"github.com/azybler/roadgraph/pkg/osm"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	_ = validate.RegisterValidation("bbox", func(fl validator.FieldLevel) bool {
		_, err := osm.ParseBBox(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("materialize", func(fl validator.FieldLevel) bool {
		_, err := graph.ParseMaterializeMode(fl.Field().String())
		return err == nil
	})
}

// Dataset is one named road network.
type Dataset struct {
	Name string `yaml:"name" validate:"required,alphanum,lowercase,max=64"`
	PBF  string `yaml:"pbf,omitempty"`
	BBox string `yaml:"bbox,omitempty" validate:"bbox"`
}

// Server configures `roadgraph serve`.
type Server struct {
	Addr          string  `yaml:"addr" validate:"required,hostname_port"`
	CORSOrigin    string  `yaml:"cors_origin,omitempty" validate:"omitempty,url"`
	MaxConcurrent int     `yaml:"max_concurrent" validate:"gte=0"`
	MaxSnapMeters float64 `yaml:"max_snap_meters" validate:"gte=0"`
}

// Config is the top-level configuration.
type Config struct {
	DataDir     string    `yaml:"data_dir" validate:"required"`
	OutDir      string    `yaml:"out_dir" validate:"required"`
	Workers     int       `yaml:"workers" validate:"gte=1,lte=256"`
	Materialize string    `yaml:"materialize" validate:"materialize"`
	Binary      bool      `yaml:"binary"`
	Server      Server    `yaml:"server"`
	Datasets    []Dataset `yaml:"datasets" validate:"required,min=1,unique=Name,dive"`
}

// Default returns the configuration used when no file is given: the two
// city datasets read from and written to the current directory.
func Default() Config {
	return Config{
		DataDir:     ".",
		OutDir:      ".",
		Workers:     runtime.NumCPU(),
		Materialize: graph.MaterializePassThrough.String(),
		Server: Server{
			Addr:          ":8080",
			MaxSnapMeters: 500,
		},
		Datasets: []Dataset{{Name: "paris"}, {Name: "dublin"}},
	}
}

// Load reads path over the defaults, applies ROADGRAPH_* environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("invalid environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("ROADGRAPH_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("ROADGRAPH_OUT_DIR"); v != "" {
		cfg.OutDir = v
	}
	if v := os.Getenv("ROADGRAPH_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ROADGRAPH_WORKERS=%q: not an integer", v)
		}
		cfg.Workers = n
	}
	if v := os.Getenv("ROADGRAPH_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	return nil
}

// Validate checks struct constraints and returns the first violation as a
// readable error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
	return err
}

// Mode returns the configured materialize mode.
func (c *Config) Mode() graph.MaterializeMode {
	m, _ := graph.ParseMaterializeMode(c.Materialize)
	return m
}

// Dataset returns the configured dataset with the given name. Only configured
// datasets may be built or served.
func (c *Config) Dataset(name string) (Dataset, error) {
	for _, d := range c.Datasets {
		if d.Name == name {
			return d, nil
		}
	}
	return Dataset{}, fmt.Errorf("dataset %q is not configured", name)
}

// Select returns the named datasets in the order given, or all of them when
// names is empty.
func (c *Config) Select(names []string) ([]Dataset, error) {
	if len(names) == 0 {
		return c.Datasets, nil
	}
	out := make([]Dataset, 0, len(names))
	for _, name := range names {
		d, err := c.Dataset(name)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Box returns the dataset's parsed bounding box (zero when unset).
func (d Dataset) Box() osm.BBox {
	b, _ := osm.ParseBBox(d.BBox)
	return b
}
