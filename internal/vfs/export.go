package vfs

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Format selects a tree export encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ContentType returns the MIME type for the format
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatTOML:
		return "application/toml"
	default:
		return "application/json"
	}
}

// Encode serializes an item snapshot (usually Store.Root()) in the given format
func Encode(item *Item, format Format) ([]byte, error) {
	if item == nil {
		return nil, ErrNotFound
	}
	switch format {
	case FormatJSON, "":
		return sonic.ConfigStd.MarshalIndent(item, "", "  ")
	case FormatYAML:
		return yaml.Marshal(item)
	case FormatTOML:
		return toml.Marshal(item)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// Decode parses an exported snapshot back into an item tree
func Decode(data []byte, format Format) (*Item, error) {
	var it Item
	var err error
	switch format {
	case FormatJSON, "":
		err = sonic.ConfigStd.Unmarshal(data, &it)
	case FormatYAML:
		err = yaml.Unmarshal(data, &it)
	case FormatTOML:
		err = toml.Unmarshal(data, &it)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s snapshot: %w", format, err)
	}
	return &it, nil
}
