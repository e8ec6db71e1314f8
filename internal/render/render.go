// Package render encodes nested rows for output and decodes flat rows from files.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/dbsmedya/gonest/internal/types"
)

// Supported output formats.
const (
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatMsgpack = "msgpack"
)

// Write encodes v, usually []*types.Row, to w. Column order is preserved in every format.
func Write(w io.Writer, v interface{}, format string, pretty bool) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if pretty {
			enc.SetIndent("", "  ")
		}
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatMsgpack:
		if err := msgpack.NewEncoder(w).Encode(v); err != nil {
			return fmt.Errorf("encode msgpack: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// ReadRows decodes a JSON array or YAML sequence of objects into ordered rows.
func ReadRows(r io.Reader) ([]*types.Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []*types.Row{}, nil
	}

	var rows []*types.Row
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("decode json rows: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("decode yaml rows: %w", err)
		}
	}

	for i, row := range rows {
		if row == nil {
			return nil, fmt.Errorf("row %d is null", i)
		}
	}
	if rows == nil {
		rows = []*types.Row{}
	}
	return rows, nil
}
