// Package types contains the ordered row type shared by the fetch, nesting and rendering layers.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Row is an ordered mapping from column name to an opaque value.
// Column order is the order in which columns were first set.
type Row struct {
	cols *orderedmap.OrderedMap[string, interface{}]
}

// NewRow creates an empty Row.
func NewRow() *Row {
	return &Row{cols: orderedmap.NewOrderedMap[string, interface{}]()}
}

// NewRowFromColumns builds a Row from parallel column and value slices,
// as produced by scanning a *sql.Rows result.
func NewRowFromColumns(columns []string, values []interface{}) (*Row, error) {
	if len(columns) != len(values) {
		return nil, fmt.Errorf("column count %d does not match value count %d", len(columns), len(values))
	}
	r := NewRow()
	for i, col := range columns {
		r.Set(col, values[i])
	}
	return r, nil
}

// RowFromPairs builds a Row from alternating column/value arguments.
// It panics if the argument count is odd or a column is not a string.
func RowFromPairs(pairs ...interface{}) *Row {
	if len(pairs)%2 != 0 {
		panic("types: RowFromPairs needs an even number of arguments")
	}
	r := NewRow()
	for i := 0; i < len(pairs); i += 2 {
		col, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("types: RowFromPairs column %d is %T, not string", i/2, pairs[i]))
		}
		r.Set(col, pairs[i+1])
	}
	return r
}

func (r *Row) init() {
	if r.cols == nil {
		r.cols = orderedmap.NewOrderedMap[string, interface{}]()
	}
}

// Get returns the value stored for column and whether the column exists.
func (r *Row) Get(column string) (interface{}, bool) {
	if r == nil || r.cols == nil {
		return nil, false
	}
	return r.cols.Get(column)
}

// Has reports whether the column exists, regardless of its value.
func (r *Row) Has(column string) bool {
	_, ok := r.Get(column)
	return ok
}

// Set stores value under column. Existing columns keep their position.
func (r *Row) Set(column string, value interface{}) {
	r.init()
	r.cols.Set(column, value)
}

// Len returns the number of columns.
func (r *Row) Len() int {
	if r == nil || r.cols == nil {
		return 0
	}
	return r.cols.Len()
}

// Keys returns the column names in order.
func (r *Row) Keys() []string {
	keys := make([]string, 0, r.Len())
	r.Each(func(column string, _ interface{}) {
		keys = append(keys, column)
	})
	return keys
}

// Each calls fn for every column in order.
func (r *Row) Each(fn func(column string, value interface{})) {
	if r == nil || r.cols == nil {
		return
	}
	for el := r.cols.Front(); el != nil; el = el.Next() {
		fn(el.Key, el.Value)
	}
}

// Clone returns a shallow copy; values are shared, column order is preserved.
func (r *Row) Clone() *Row {
	c := NewRow()
	r.Each(func(column string, value interface{}) {
		c.Set(column, value)
	})
	return c
}

// Map returns an unordered snapshot of the row.
func (r *Row) Map() map[string]interface{} {
	m := make(map[string]interface{}, r.Len())
	r.Each(func(column string, value interface{}) {
		m[column] = value
	})
	return m
}

func (r *Row) String() string {
	var buf bytes.Buffer
	buf.WriteString("Row{")
	i := 0
	r.Each(func(column string, value interface{}) {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s: %v", column, value)
		i++
	})
	buf.WriteByte('}')
	return buf.String()
}

// MarshalJSON encodes the row as a JSON object with columns in order.
func (r *Row) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	var err error
	i := 0
	r.Each(func(column string, value interface{}) {
		if err != nil {
			return
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		i++
		var k, v []byte
		if k, err = json.Marshal(column); err != nil {
			return
		}
		if v, err = json.Marshal(value); err != nil {
			err = fmt.Errorf("column %q: %w", column, err)
			return
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping key order.
// Top-level integral numbers decode to int64, other numbers to float64.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	r.cols = orderedmap.NewOrderedMap[string, interface{}]()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		column, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("column %q: %w", column, err)
		}
		if n, ok := value.(json.Number); ok {
			value = numberValue(n)
		}
		r.Set(column, value)
	}
	_, err = dec.Token()
	return err
}

func numberValue(n json.Number) interface{} {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// MarshalYAML encodes the row as a YAML mapping with columns in order.
func (r *Row) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	var err error
	r.Each(func(column string, value interface{}) {
		if err != nil {
			return
		}
		v := &yaml.Node{}
		if err = v.Encode(value); err != nil {
			err = fmt.Errorf("column %q: %w", column, err)
			return
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: column},
			v,
		)
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// UnmarshalYAML decodes a YAML mapping keeping key order.
func (r *Row) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping, got %v", node.Line, node.Kind)
	}
	r.cols = orderedmap.NewOrderedMap[string, interface{}]()
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		var value interface{}
		if err := val.Decode(&value); err != nil {
			return fmt.Errorf("column %q: %w", key.Value, err)
		}
		r.Set(key.Value, value)
	}
	return nil
}

var _ msgpack.CustomEncoder = (*Row)(nil)

// EncodeMsgpack encodes the row as a MessagePack map with columns in order.
func (r *Row) EncodeMsgpack(enc *msgpack.Encoder) error {
	if r == nil {
		return enc.EncodeNil()
	}
	if err := enc.EncodeMapLen(r.Len()); err != nil {
		return err
	}
	if r.cols == nil {
		return nil
	}
	for el := r.cols.Front(); el != nil; el = el.Next() {
		if err := enc.EncodeString(el.Key); err != nil {
			return err
		}
		if err := enc.Encode(el.Value); err != nil {
			return fmt.Errorf("column %q: %w", el.Key, err)
		}
	}
	return nil
}
