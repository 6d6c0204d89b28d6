package models

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Header is the shared column layout of a set of rows.
type Header struct {
	names []string
	index map[string]int
}

// NewHeader builds a header from column names. Surrounding whitespace is
// trimmed; when a name repeats, the first column wins lookups.
func NewHeader(names []string) *Header {
	h := &Header{names: make([]string, len(names)), index: make(map[string]int, len(names))}
	for i, n := range names {
		n = strings.TrimSpace(n)
		h.names[i] = n
		if _, dup := h.index[n]; !dup {
			h.index[n] = i
		}
	}
	return h
}

// Names returns a copy of the column names in order.
func (h *Header) Names() []string {
	out := make([]string, len(h.names))
	copy(out, h.names)
	return out
}

// Field is one key/value pair of a row.
type Field struct {
	Key   string
	Value string
}

// Row is one immutable CSV record. The zero Row has no fields.
type Row struct {
	header *Header
	values []string
}

// NewRow creates a row against header. Missing trailing values read as "".
func NewRow(header *Header, values ...string) Row {
	v := make([]string, len(values))
	copy(v, values)
	return Row{header: header, values: v}
}

// Lookup returns the value stored under key and whether the column exists.
func (r Row) Lookup(key string) (string, bool) {
	if r.header == nil {
		return "", false
	}
	i, ok := r.header.index[key]
	if !ok {
		return "", false
	}
	if i >= len(r.values) {
		return "", true
	}
	return r.values[i], true
}

// Get returns the value stored under key, or "" when absent.
func (r Row) Get(key string) string {
	v, _ := r.Lookup(key)
	return v
}

// Fields returns the row's fields in column order.
func (r Row) Fields() []Field {
	if r.header == nil {
		return nil
	}
	out := make([]Field, len(r.header.names))
	for i, name := range r.header.names {
		out[i] = Field{Key: name}
		if i < len(r.values) {
			out[i].Value = r.values[i]
		}
	}
	return out
}

// Rows is an ordered collection of rows.
type Rows []Row

// ParseCSV parses CSV data with a header line into rows. Empty input yields
// no rows and no error; rows of a different width than the header are kept
// and read missing columns as "".
func ParseCSV(data []byte) (Rows, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	names, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(names) > 0 {
		names[0] = strings.TrimPrefix(names[0], "\ufeff")
	}
	header := NewHeader(names)

	var rows Rows
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record %d: %w", len(rows)+1, err)
		}
		rows = append(rows, Row{header: header, values: record})
	}
	return rows, nil
}
