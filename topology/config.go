package topology

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"go.pipeflow.dev/pipeflow/buffer"
)

// ErrUnknownAdapter is returned by [Config.Validate] for a source whose
// adapter name does not match a known [go.pipeflow.dev/pipeflow/format]
// adapter. Match with [errors.Is].
var ErrUnknownAdapter = errors.New("topology: unknown adapter")

// ErrMissingField is returned by [Config.Validate] when a required field is
// empty. Match with [errors.Is].
var ErrMissingField = errors.New("topology: missing field")

// Known adapter names accepted in a source's adapter field.
const (
	AdapterCSV       = "csv"
	AdapterJSONLines = "jsonlines"
	AdapterYAMLDocs  = "yaml"
)

// SourceConfig declares one named source, the adapter that feeds it, and
// the buffer policy between that source and the shared [flow.Flow].
type SourceConfig struct {
	Name     string `yaml:"name"`
	Adapter  string `yaml:"adapter"`
	Path     string `yaml:"path"`
	Policy   string `yaml:"policy"`
	Capacity int    `yaml:"capacity"`
}

// Config is a fully parsed topology document.
type Config struct {
	Sources []SourceConfig `yaml:"sources"`
}

// Parse decodes a topology document from r. Parse does not validate field
// values; call [Config.Validate] afterward.
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("topology: read document: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("topology: parse document: %w", err)
	}

	return &cfg, nil
}

// Validate checks every source's adapter name and buffer policy, returning
// a joined error (via [errors.Join]) describing every problem found so a
// malformed topology is rejected before any goroutine starts.
func (c *Config) Validate() error {
	var errs []error

	names := make(map[string]bool, len(c.Sources))

	for i, src := range c.Sources {
		if src.Name == "" {
			errs = append(errs, fmt.Errorf("source %d: %w: name", i, ErrMissingField))
		} else if names[src.Name] {
			errs = append(errs, fmt.Errorf("source %d: duplicate name %q", i, src.Name))
		} else {
			names[src.Name] = true
		}

		switch src.Adapter {
		case AdapterCSV, AdapterJSONLines, AdapterYAMLDocs:
		case "":
			errs = append(errs, fmt.Errorf("source %q: %w: adapter", src.Name, ErrMissingField))
		default:
			errs = append(errs, fmt.Errorf("source %q: %w: %q", src.Name, ErrUnknownAdapter, src.Adapter))
		}

		if src.Path == "" {
			errs = append(errs, fmt.Errorf("source %q: %w: path", src.Name, ErrMissingField))
		}

		if _, err := buffer.ParsePolicy(src.Policy); err != nil {
			errs = append(errs, fmt.Errorf("source %q: %w", src.Name, err))
		}
	}

	return errors.Join(errs...)
}
