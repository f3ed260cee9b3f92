package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a policy document from a YAML file.
//
// A missing or malformed file is a configuration error; callers treat it as
// fatal at startup and as reload-rejected during hot reload.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("policy file not found: %s", path)
		}
		return nil, fmt.Errorf("read policy file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a policy document from YAML bytes.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse policy document: %w", err)
	}

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy document: %w", err)
	}

	return &doc, nil
}
