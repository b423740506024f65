package nebula

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// indent matches the two-space indentation of nebula's example config.
const indent = 2

// Marshal renders the configuration file.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode nebula config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode nebula config: %w", err)
	}
	return buf.Bytes(), nil
}
