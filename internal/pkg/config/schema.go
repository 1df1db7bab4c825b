package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/coreos/go-semver/semver"
	"github.com/pkg/errors"
	schema "github.com/xeipuuv/gojsonschema"
)

const generatedSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["tool", "installer_url", "fetch_tools", "interpreter", "install_dir", "remote", "branch", "runtime", "message"],
  "properties": {
    "tool": {"type": "string", "minLength": 1, "pattern": "^[^/\\s]+$"},
    "installer_url": {"type": "string", "pattern": "^https?://"},
    "fetch_tools": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "args"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "args": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "interpreter": {"type": "string", "minLength": 1},
    "install_dir": {"type": "string", "minLength": 1},
    "remote": {"type": "string", "minLength": 1},
    "branch": {"type": "string", "minLength": 1, "pattern": "^[^\\s@]+$"},
    "runtime": {"type": "string", "pattern": "^[0-9]+(\\.[0-9]+){0,2}$"},
    "extra_args": {"type": "array", "items": {"type": "string"}},
    "message": {"type": "string"}
  }
}`

// EnvSchema names a JSON Schema file that replaces the built-in one.
const EnvSchema = "OI_BOOTSTRAP_CONFIG_SCHEMA"

var (
	// SchemaJSON is the schema used by Validate.
	SchemaJSON = generatedSchemaJSON
)

// SetSchemaFromFile replaces the validation JSON Schema.
func SetSchemaFromFile(r io.Reader) error {
	if r == nil {
		return errors.New("schema input is invalid")
	}
	in, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	SchemaJSON = string(in)
	return nil
}

// Validate checks the config against the schema and the runtime pin
// against version syntax.
func (c *Config) Validate() []error {
	var e []error
	data, err := json.Marshal(c)
	if err != nil {
		return append(e, err)
	}

	result, err := schema.Validate(
		schema.NewStringLoader(SchemaJSON),
		schema.NewStringLoader(string(data)),
	)
	if err != nil {
		return append(e, errors.Wrap(err, "loading config schema"))
	}
	for _, desc := range result.Errors() {
		e = append(e, fmt.Errorf("invalid: %s", desc))
	}

	if _, err := RuntimeVersion(c.Runtime); err != nil {
		e = append(e, err)
	}

	for _, t := range c.FetchTools {
		if !argsMentionURL(t.Args) {
			e = append(e, fmt.Errorf("invalid: fetch tool %s does not reference %s", t.Name, URLPlaceholder))
		}
	}
	return e
}

// RuntimeVersion parses a runtime pin such as "3.11" by padding it to a
// full major.minor.patch triple.
func RuntimeVersion(s string) (*semver.Version, error) {
	parts := strings.Split(s, ".")
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	v, err := semver.NewVersion(strings.Join(parts, "."))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid runtime version %q", s)
	}
	return v, nil
}

func argsMentionURL(args []string) bool {
	for _, a := range args {
		if strings.Contains(a, URLPlaceholder) {
			return true
		}
	}
	return false
}

// ApplySchemaEnv replaces the schema with the file named by
// OI_BOOTSTRAP_CONFIG_SCHEMA, when that is set. lookup has the signature of
// os.LookupEnv.
func ApplySchemaEnv(lookup func(string) (string, bool)) error {
	path, ok := lookup(EnvSchema)
	if !ok || path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening schema file %s", path)
	}
	defer f.Close()

	if err := SetSchemaFromFile(f); err != nil {
		return errors.Wrapf(err, "reading schema file %s", path)
	}
	plog.Infof("validating against schema %s", path)
	return nil
}
