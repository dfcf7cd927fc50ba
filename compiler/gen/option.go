package gen

import (
	"path"
	"runtime"
)

// Option configures a generation run.
type Option func(*Config) error

// Config carries the settings of one generation run.
type Config struct {
	// SchemaDir is the directory schema documents are read from.
	SchemaDir string
	// ModelTarget is the output directory for model artifacts.
	ModelTarget string
	// APITarget is the output directory for API artifacts.
	APITarget string
	// Package is the import path generated artifacts live under, e.g.
	// "github.com/org/app". Model artifacts become Package/models and
	// API artifacts Package/api.
	Package string
	// Header is the comment placed at the top of every artifact.
	Header string
	// Workers bounds the emission fan-out after validation.
	Workers int
}

// DefaultHeader is the header comment of generated artifacts.
const DefaultHeader = "Code generated by crudgen. DO NOT EDIT."

// NewConfig creates a generation config from functional options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Header:  DefaultHeader,
		Workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithSchemaDir sets the schema source directory.
func WithSchemaDir(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("SchemaDir", nil, "schema directory cannot be empty")
		}
		c.SchemaDir = dir
		return nil
	}
}

// WithModelTarget sets the model artifact output directory.
func WithModelTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("ModelTarget", nil, "target directory cannot be empty")
		}
		c.ModelTarget = dir
		return nil
	}
}

// WithAPITarget sets the API artifact output directory.
func WithAPITarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("APITarget", nil, "target directory cannot be empty")
		}
		c.APITarget = dir
		return nil
	}
}

// WithPackage sets the import path generated artifacts live under.
// For example: "github.com/org/project".
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		c.Package = pkg
		return nil
	}
}

// WithHeader sets the file header comment of generated artifacts.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithWorkers bounds the number of parallel emission workers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewConfigError("Workers", n, "worker count must be positive")
		}
		c.Workers = n
		return nil
	}
}

// ModelPackage returns the import path of the generated models package.
func (c *Config) ModelPackage() string {
	return path.Join(c.Package, "models")
}

// APIPackage returns the import path of the generated api package.
func (c *Config) APIPackage() string {
	return path.Join(c.Package, "api")
}
