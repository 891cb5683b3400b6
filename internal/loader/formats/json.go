package formats

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JonMunkholm/gdpdash/internal/loader"
	"github.com/JonMunkholm/gdpdash/internal/table"
)

const formatJSON = "json"

// JSON loads either an array of records ([{"country": ...}, ...]) or an
// object of equally long column arrays ({"country": [...], "gdp": [...]}).
// Column order follows the order keys first appear in the source.
//
// Options:
//   - records_path: dotted path to the array or object to load (e.g. "data.rows")
type JSON struct{}

// NewJSON returns the JSON loader.
func NewJSON() *JSON { return &JSON{} }

func (l *JSON) SupportedFormat() string { return formatJSON }

func (l *JSON) Load(req loader.Request) (*table.Table, error) {
	f, err := os.Open(req.Source())
	if err != nil {
		return nil, loader.NewLoadError(req, formatJSON, "cannot open source", err)
	}
	defer f.Close()

	return l.Decode(req, f)
}

// Decode reads JSON from r.
func (l *JSON) Decode(req loader.Request, r io.Reader) (*table.Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	doc, err := decodeValue(dec)
	if errors.Is(err, io.EOF) {
		return nil, loader.NewLoadError(req, formatJSON, "empty file", nil)
	}
	if err != nil {
		return nil, loader.NewLoadError(req, formatJSON, "malformed JSON", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, loader.NewLoadError(req, formatJSON, "unexpected data after top-level value", nil)
	}

	if path := req.OptionOr("records_path", ""); path != "" {
		for _, part := range strings.Split(path, ".") {
			obj, ok := doc.(*object)
			if !ok {
				return nil, loader.NewLoadError(req, formatJSON, fmt.Sprintf("records_path %q: %q is not inside an object", path, part), nil)
			}
			doc, ok = obj.values[part]
			if !ok {
				return nil, loader.NewLoadError(req, formatJSON, fmt.Sprintf("records_path %q: key %q not found", path, part), nil)
			}
		}
	}

	switch v := doc.(type) {
	case []any:
		return l.fromRecords(req, v)
	case *object:
		return l.fromColumns(req, v)
	default:
		return nil, loader.NewLoadError(req, formatJSON, "top-level value must be an array of records or an object of columns", nil)
	}
}

func (l *JSON) fromRecords(req loader.Request, records []any) (*table.Table, error) {
	if len(records) == 0 {
		return nil, loader.NewLoadError(req, formatJSON, "no records", nil)
	}

	var header []string
	seen := make(map[string]bool)
	for i, rec := range records {
		obj, ok := rec.(*object)
		if !ok {
			return nil, loader.NewLoadError(req, formatJSON, fmt.Sprintf("record %d is not an object", i+1), nil)
		}
		for _, k := range obj.keys {
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
		}
	}

	rows := make([][]string, len(records))
	for i, rec := range records {
		obj := rec.(*object)
		row := make([]string, len(header))
		for j, k := range header {
			s, err := scalarText(obj.values[k])
			if err != nil {
				return nil, loader.NewLoadError(req, formatJSON, fmt.Sprintf("record %d field %q", i+1, k), err)
			}
			row[j] = s
		}
		rows[i] = row
	}

	header, err := normalizeHeader(req, formatJSON, header)
	if err != nil {
		return nil, err
	}
	return buildTable(req, formatJSON, header, rows)
}

func (l *JSON) fromColumns(req loader.Request, obj *object) (*table.Table, error) {
	if len(obj.keys) == 0 {
		return nil, loader.NewLoadError(req, formatJSON, "no columns", nil)
	}

	n := -1
	cols := make([][]any, len(obj.keys))
	for j, k := range obj.keys {
		arr, ok := obj.values[k].([]any)
		if !ok {
			return nil, loader.NewLoadError(req, formatJSON, fmt.Sprintf("column %q is not an array", k), nil)
		}
		if n >= 0 && len(arr) != n {
			return nil, loader.NewLoadError(req, formatJSON,
				fmt.Sprintf("column %q has %d values, expected %d", k, len(arr), n), nil)
		}
		n = len(arr)
		cols[j] = arr
	}

	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(cols))
		for j, col := range cols {
			s, err := scalarText(col[i])
			if err != nil {
				return nil, loader.NewLoadError(req, formatJSON, fmt.Sprintf("column %q value %d", obj.keys[j], i+1), err)
			}
			row[j] = s
		}
		rows[i] = row
	}

	header, err := normalizeHeader(req, formatJSON, obj.keys)
	if err != nil {
		return nil, err
	}
	return buildTable(req, formatJSON, header, rows)
}

// object is a JSON object that remembers key order.
type object struct {
	keys   []string
	values map[string]any
}

// decodeValue reads one JSON value, keeping object key order.
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := &object{values: make(map[string]any)}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				k, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %v", kt)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return nil, unexpectedEOF(err)
				}
				if _, dup := obj.values[k]; !dup {
					obj.keys = append(obj.keys, k)
				}
				obj.values[k] = v
			}
			if _, err := dec.Token(); err != nil {
				return nil, unexpectedEOF(err)
			}
			return obj, nil
		case '[':
			arr := []any{}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, unexpectedEOF(err)
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, unexpectedEOF(err)
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	default:
		return tok, nil
	}
}

// unexpectedEOF keeps a truncated document from looking like an empty one.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// scalarText renders a decoded JSON scalar as raw cell text. null becomes "".
func scalarText(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case json.Number:
		return s.String(), nil
	case bool:
		if s {
			return "true", nil
		}
		return "false", nil
	default:
		return "", errors.New("nested arrays and objects are not supported")
	}
}
