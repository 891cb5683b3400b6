package declarative

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidationError represents a single problem in a pipeline file.
type ValidationError struct {
	Path    string // e.g. "contract.columns[2].default"
	Message string
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// InvalidPipelineError lists every problem found in one file.
type InvalidPipelineError struct {
	File     string
	Problems []ValidationError
}

func (e *InvalidPipelineError) Error() string {
	var b strings.Builder
	name := e.File
	if name == "" {
		name = "pipeline"
	}
	fmt.Fprintf(&b, "%s: %d problem(s):", name, len(e.Problems))
	for _, p := range e.Problems {
		b.WriteString("\n  - ")
		b.WriteString(p.Error())
	}
	return b.String()
}

// LoadFile reads, validates and compiles the pipeline file at path.
func LoadFile(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-specified pipeline file
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	p, err := Compile(doc, filepath.Dir(path))
	if err != nil {
		var invalid *InvalidPipelineError
		if errors.As(err, &invalid) {
			invalid.File = path
		}
		return nil, err
	}
	p.File = path
	return p, nil
}

// Decode strictly decodes one pipeline document; unknown fields are errors.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	return &doc, nil
}

// Encode writes doc as YAML.
func Encode(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
