package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Record is one row: an insertion-ordered mapping from column name to Value.
// The zero Record is empty and ready to use.
type Record struct {
	keys []string
	vals map[string]Value
}

// New builds a record from alternating column/value pairs.
// Values are converted with Of. Panics on an odd argument count or a non-string column.
//
//	r := record.New("id", 1, "name", "A", "note", nil)
func New(pairs ...any) Record {
	if len(pairs)%2 != 0 {
		panic("record: New needs column/value pairs")
	}
	var r Record
	for i := 0; i < len(pairs); i += 2 {
		col, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("record: column name must be a string, got %T", pairs[i]))
		}
		r.Set(col, Of(pairs[i+1]))
	}
	return r
}

// Set assigns a column. A new column is appended after the existing ones;
// an existing column keeps its position.
func (r *Record) Set(col string, v Value) {
	if r.vals == nil {
		r.vals = make(map[string]Value)
	}
	if _, ok := r.vals[col]; !ok {
		r.keys = append(r.keys, col)
	}
	r.vals[col] = v
}

// Get returns the value of col and whether the column exists.
func (r Record) Get(col string) (Value, bool) {
	v, ok := r.vals[col]
	return v, ok
}

// Has reports whether the column exists, even when its value is null.
func (r Record) Has(col string) bool {
	_, ok := r.vals[col]
	return ok
}

// Keys returns the column names in insertion order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of columns.
func (r Record) Len() int { return len(r.keys) }

// Clone returns a deep copy.
func (r Record) Clone() Record {
	c := Record{
		keys: make([]string, len(r.keys)),
		vals: make(map[string]Value, len(r.vals)),
	}
	copy(c.keys, r.keys)
	for k, v := range r.vals {
		c.vals[k] = v
	}
	return c
}

// Each calls fn for every column in insertion order.
func (r Record) Each(fn func(col string, v Value)) {
	for _, k := range r.keys {
		fn(k, r.vals[k])
	}
}

// MarshalJSON writes the record as a JSON object in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := r.vals[k].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping the document's column order.
// A repeated column keeps its first position and its last value.
func (r *Record) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record: expected JSON object, got %v", tok)
	}

	*r = Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		col, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record: expected column name, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("column %q: %w", col, err)
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("column %q: %w", col, err)
		}
		r.Set(col, v)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// Set is an insertion-ordered sequence of records.
type Set []Record

// DecodeSet reads a JSON array of records.
// Empty input (a file that exists but holds nothing) decodes to an empty set.
func DecodeSet(r io.Reader) (Set, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Set{}, nil
	}

	var set Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if set == nil {
		set = Set{}
	}
	return set, nil
}

// EncodeSet writes the set as an indented JSON array.
func EncodeSet(w io.Writer, set Set) error {
	data, err := MarshalSet(set)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// MarshalSet returns the indented JSON array form of the set.
// A nil set encodes as [] rather than null.
func MarshalSet(set Set) ([]byte, error) {
	if set == nil {
		set = Set{}
	}
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return data, nil
}
