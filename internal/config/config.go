// Package config loads the optional interactive-mode configuration file
// (~/.myshrc.yaml), validating it against a JSON schema before handing
// back a typed Config.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/mysh-lang/mysh/pkgs/errors"
)

// Config holds the recognized ~/.myshrc.yaml keys.
type Config struct {
	HistoryLimit      int    `yaml:"history_limit"`
	NoConfirmOverwrite bool  `yaml:"no_confirm_overwrite"`
	PromptFormat      string `yaml:"prompt_format"`
}

// Default returns the configuration used when no rc file is present.
func Default() Config {
	return Config{HistoryLimit: 1000, PromptFormat: "$ "}
}

const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "history_limit": {"type": "integer", "minimum": 0},
    "no_confirm_overwrite": {"type": "boolean"},
    "prompt_format": {"type": "string"}
  }
}`

// Load reads and validates path, falling back to Default() if the file
// does not exist. Any parse or schema-validation failure is returned as
// a *errors.Error of type CONFIG_ERROR.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrConfig, "reading "+path, err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, errors.Wrap(errors.ErrConfig, "parsing "+path, err)
	}

	if err := validate(raw, path); err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrConfig, "decoding "+path, err)
	}
	return cfg, nil
}

func validate(raw map[string]interface{}, path string) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("myshrc.json", bytes.NewReader([]byte(schemaJSON))); err != nil {
		return errors.Wrap(errors.ErrConfig, "compiling config schema", err)
	}
	schema, err := compiler.Compile("myshrc.json")
	if err != nil {
		return errors.Wrap(errors.ErrConfig, "compiling config schema", err)
	}

	// jsonschema validates against JSON-shaped data; round-trip through
	// encoding/json so YAML's map[interface{}]interface{} quirks (and int
	// vs float64 distinctions) match what the schema expects.
	normalized, err := json.Marshal(raw)
	if err != nil {
		return errors.Wrap(errors.ErrConfig, "normalizing "+path, err)
	}
	var doc interface{}
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return errors.Wrap(errors.ErrConfig, "normalizing "+path, err)
	}

	if err := schema.Validate(doc); err != nil {
		return errors.Wrap(errors.ErrConfig, path+" does not match the expected schema", err)
	}
	return nil
}

// DefaultPath returns ~/.myshrc.yaml for the current user.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".myshrc.yaml"
	}
	return filepath.Join(home, ".myshrc.yaml")
}
