package schema

import (
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for schema generation, allowing callers to
// customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	Title  string
	Strict string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{Flags: f}
}

// Config holds CLI flag values for schema generation.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewGenerator] to build a [Generator].
type Config struct {
	Title  string
	Strict bool
	Flags  Flags
}

// NewConfig returns a new [Config] with zero-value fields.
func NewConfig() *Config {
	f := Flags{
		Title:  "schema-title",
		Strict: "schema-strict",
	}

	return f.NewConfig()
}

// RegisterFlags adds schema flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Title, c.Flags.Title, "", "title to set on the generated schema")
	flags.BoolVar(&c.Strict, c.Flags.Strict, false, "reject unrecognized fields (additionalProperties: false)")
}

// NewGenerator creates a [Generator] from the values stored in c.
func (c *Config) NewGenerator() *Generator {
	opts := []Option{WithStrict(c.Strict)}
	if c.Title != "" {
		opts = append(opts, WithTitle(c.Title))
	}

	return NewGenerator(opts...)
}
