// Package table parses opaque result records and renders them as an HTML table.
package table

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrMalformed is wrapped by every parse failure
var ErrMalformed = errors.New("malformed result data")

// Kind classifies a cell value
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindRaw // nested object or array
)

// Value is a single scalar from a result record. Text holds the string content
// for strings and the JSON literal for everything else.
type Value struct {
	Kind Kind
	Text string
}

// Record is one result row. Column order is the key order of the source object.
type Record struct {
	columns []string
	values  map[string]Value
}

// Columns returns the record's column names in document order
func (r Record) Columns() []string {
	return r.columns
}

// Get returns the value of a column
func (r Record) Get(column string) (Value, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Parse reads a JSON array of objects, or a single object treated as a
// one-element array.
func Parse(data []byte) ([]Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}

	doc := gjson.ParseBytes(data)
	switch {
	case doc.IsObject():
		return []Record{newRecord(doc)}, nil
	case doc.IsArray():
		records := []Record{}
		var elemErr error
		i := 0
		doc.ForEach(func(_, elem gjson.Result) bool {
			if !elem.IsObject() {
				elemErr = fmt.Errorf("%w: element %d is not an object", ErrMalformed, i)
				return false
			}
			records = append(records, newRecord(elem))
			i++
			return true
		})
		if elemErr != nil {
			return nil, elemErr
		}
		return records, nil
	default:
		return nil, fmt.Errorf("%w: expected a JSON object or an array of objects", ErrMalformed)
	}
}

func newRecord(obj gjson.Result) Record {
	r := Record{values: make(map[string]Value)}
	obj.ForEach(func(key, val gjson.Result) bool {
		name := key.String()
		if _, seen := r.values[name]; !seen {
			r.columns = append(r.columns, name)
		}
		// Last duplicate wins, first position is kept
		r.values[name] = toValue(val)
		return true
	})
	return r
}

func toValue(v gjson.Result) Value {
	switch v.Type {
	case gjson.Null:
		return Value{Kind: KindNull}
	case gjson.String:
		return Value{Kind: KindString, Text: v.Str}
	case gjson.Number:
		return Value{Kind: KindNumber, Text: v.Raw}
	case gjson.True, gjson.False:
		return Value{Kind: KindBool, Text: v.Raw}
	default:
		return Value{Kind: KindRaw, Text: v.Raw}
	}
}
