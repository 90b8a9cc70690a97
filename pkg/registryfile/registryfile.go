// Package registryfile decodes the YAML/JSON registry files used for
// deployments and publishers.
package registryfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnrecognizedFormat is returned when no decoder accepts the content.
var ErrUnrecognizedFormat = errors.New("registry file format not recognized (expected YAML or JSON)")

type unmarshalFn func([]byte, any) error

var decoders = []struct {
	name string
	ext  string
	fn   unmarshalFn
}{
	{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
	{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
	{name: "json", ext: ".json", fn: json.Unmarshal},
}

// Load reads path and decodes it into out, choosing the decoder by extension.
func Load(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("registry file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open registry file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read registry file: %w", err)
	}
	return Decode(raw, filepath.Ext(path), out)
}

// Decode decodes data into out. An empty ext tries every known format in order.
func Decode(data []byte, ext string, out any) error {
	ext = strings.ToLower(strings.TrimSpace(ext))

	var errs []error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if err := d.fn(data, out); err != nil {
			errs = append(errs, fmt.Errorf("decode %s: %w", d.name, err))
			continue
		}
		return nil
	}
	return errors.Join(append([]error{ErrUnrecognizedFormat}, errs...)...)
}
