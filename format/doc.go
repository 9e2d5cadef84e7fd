// Package format implements record-producing adapters that turn a byte
// stream into a sequence of items fed to a
// [go.pipeflow.dev/pipeflow/source.Source]: CSV via [encoding/csv], JSON
// Lines via [encoding/json], and multi-document YAML via
// [github.com/goccy/go-yaml]'s streaming decoder. No third-party CSV or
// JSON Lines library appears anywhere in the reference corpus this module
// was built from, so those two formats are read with the standard library;
// YAML follows the corpus's existing goccy/go-yaml dependency instead of
// introducing gopkg.in/yaml.v3 as a second YAML stack.
package format
