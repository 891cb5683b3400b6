package formats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/gdpdash/internal/loader"
	"github.com/JonMunkholm/gdpdash/internal/table"
)

const formatCSV = "csv"

// CSV loads delimited text files.
//
// Options:
//   - delimiter: single character, "\t" or "tab" for tabs (default ",", or tab for .tsv)
//   - comment: lines starting with this character are skipped
type CSV struct{}

// NewCSV returns the CSV loader.
func NewCSV() *CSV { return &CSV{} }

func (l *CSV) SupportedFormat() string { return formatCSV }

func (l *CSV) Load(req loader.Request) (*table.Table, error) {
	f, err := os.Open(req.Source())
	if err != nil {
		return nil, loader.NewLoadError(req, formatCSV, "cannot open source", err)
	}
	defer f.Close()

	return l.Decode(req, f)
}

// Decode reads CSV from r using the request's options.
func (l *CSV) Decode(req loader.Request, r io.Reader) (*table.Table, error) {
	delim, err := csvDelimiter(req)
	if err != nil {
		return nil, loader.NewLoadError(req, formatCSV, "invalid delimiter option", err)
	}

	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1 // row width is checked below with a clearer message
	if c, ok := req.Option("comment"); ok && c != "" {
		cr.Comment, _ = utf8.DecodeRuneInString(c)
	}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, loader.NewLoadError(req, formatCSV, "empty file", nil)
	}
	if err != nil {
		return nil, loader.NewLoadError(req, formatCSV, "invalid header", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	header, err = normalizeHeader(req, formatCSV, header)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, loader.NewLoadError(req, formatCSV, fmt.Sprintf("malformed record near line %d", line), err)
		}
		if len(record) != len(header) {
			return nil, loader.NewLoadError(req, formatCSV,
				fmt.Sprintf("row %d has %d fields, header has %d", len(rows)+1, len(record), len(header)), nil)
		}
		rows = append(rows, record)
	}

	return buildTable(req, formatCSV, header, rows)
}

func csvDelimiter(req loader.Request) (rune, error) {
	def := ","
	if strings.EqualFold(filepath.Ext(req.Source()), ".tsv") {
		def = "\t"
	}
	d := req.OptionOr("delimiter", def)
	switch strings.ToLower(d) {
	case `\t`, "tab":
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(d)
	if size != len(d) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", d)
	}
	return r, nil
}
