package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const mainOnlySchema = `{
  "type": "object",
  "properties": {
    "branch": {"type": "string", "enum": ["main"]}
  }
}`

func restoreSchema(t *testing.T) {
	old := SchemaJSON
	t.Cleanup(func() { SchemaJSON = old })
}

func TestSetSchemaFromFile(t *testing.T) {
	restoreSchema(t)

	if err := SetSchemaFromFile(nil); err == nil {
		t.Error("expected error for nil reader")
	}
	if err := SetSchemaFromFile(strings.NewReader(mainOnlySchema)); err != nil {
		t.Fatal(err)
	}
	if errs := Default().Validate(); len(errs) == 0 {
		t.Error("replacement schema should reject the default branch")
	}
	cfg := Default()
	cfg.Branch = "main"
	if errs := cfg.Validate(); len(errs) > 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestApplySchemaEnv(t *testing.T) {
	restoreSchema(t)

	lookup := func(m map[string]string) func(string) (string, bool) {
		return func(k string) (string, bool) {
			v, ok := m[k]
			return v, ok
		}
	}

	if err := ApplySchemaEnv(lookup(nil)); err != nil {
		t.Fatalf("unset variable should be a no-op: %v", err)
	}
	if SchemaJSON != generatedSchemaJSON {
		t.Fatal("schema replaced without the variable set")
	}

	missing := filepath.Join(t.TempDir(), "none.json")
	if err := ApplySchemaEnv(lookup(map[string]string{EnvSchema: missing})); err == nil {
		t.Error("expected error for missing schema file")
	}

	path := filepath.Join(t.TempDir(), "schema.json")
	if err := os.WriteFile(path, []byte(mainOnlySchema), 0644); err != nil {
		t.Fatal(err)
	}
	if err := ApplySchemaEnv(lookup(map[string]string{EnvSchema: path})); err != nil {
		t.Fatal(err)
	}
	if SchemaJSON != mainOnlySchema {
		t.Error("schema not replaced from file")
	}
}
