package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const fileHeader = "# aimtools configuration. Command-line flags override these values.\n"

// DefaultPath is where Save writes when no path is given.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Encode writes the config as a YAML document.
func (c *Config) Encode(w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteString(fileHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "encoding config")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, "encoding config")
	}

	_, err := w.Write(buf.Bytes())
	return errors.Wrap(err, "writing config")
}

// SaveTo writes the config to path, creating parent directories.
// An empty path selects DefaultPath. It returns the path written.
func (c *Config) SaveTo(path string) (string, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := c.Validate(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errors.Wrapf(err, "creating %s", filepath.Dir(path))
	}

	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		return "", err
	}
	return path, errors.Wrapf(os.WriteFile(path, buf.Bytes(), 0644), "writing %s", path)
}
