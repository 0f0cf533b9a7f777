// Package examples provides the named library of canned SPARQL queries.
package examples

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed examples.yaml
var builtinYAML string

// Example is a labeled query.
type Example struct {
	Label       string `yaml:"label"`
	Query       string `yaml:"query"`
	Description string `yaml:"description,omitempty"`
}

// DuplicateLabelError reports a label that appears more than once.
type DuplicateLabelError struct {
	Label string
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("duplicate example label %q", e.Label)
}

// Library is an ordered, read-only collection of examples keyed by label.
type Library struct {
	examples []Example
	index    map[string]int
}

// New builds a library. Labels must be non-empty and unique.
func New(examples ...Example) (*Library, error) {
	lib := &Library{
		examples: make([]Example, 0, len(examples)),
		index:    make(map[string]int, len(examples)),
	}
	for _, ex := range examples {
		ex.Label = strings.TrimSpace(ex.Label)
		if ex.Label == "" {
			return nil, errors.New("example label must not be empty")
		}
		if _, dup := lib.index[ex.Label]; dup {
			return nil, &DuplicateLabelError{Label: ex.Label}
		}
		ex.Query = strings.TrimRight(ex.Query, "\n")
		lib.index[ex.Label] = len(lib.examples)
		lib.examples = append(lib.examples, ex)
	}
	return lib, nil
}

// Default returns the built-in library.
func Default() *Library {
	exs, err := Load(strings.NewReader(builtinYAML))
	if err != nil {
		panic(fmt.Sprintf("examples: invalid built-in examples: %v", err))
	}
	lib, err := New(exs...)
	if err != nil {
		panic(fmt.Sprintf("examples: invalid built-in examples: %v", err))
	}
	return lib
}

// Load decodes a YAML list of examples.
func Load(r io.Reader) ([]Example, error) {
	var exs []Example
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&exs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode examples: %w", err)
	}
	return exs, nil
}

// LoadFile reads examples from a YAML file.
func LoadFile(path string) ([]Example, error) {
	f, err := os.Open(path) //nolint:gosec // user-supplied examples file
	if err != nil {
		return nil, fmt.Errorf("failed to open examples file: %w", err)
	}
	defer func() { _ = f.Close() }()

	exs, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return exs, nil
}

// Extend returns a new library with extra examples appended after the existing ones.
func (l *Library) Extend(extra ...Example) (*Library, error) {
	all := make([]Example, 0, len(l.examples)+len(extra))
	all = append(all, l.examples...)
	all = append(all, extra...)
	return New(all...)
}

// Lookup returns the query for label.
func (l *Library) Lookup(label string) (string, bool) {
	i, ok := l.index[label]
	if !ok {
		return "", false
	}
	return l.examples[i].Query, true
}

// List returns labels in library order.
func (l *Library) List() []string {
	labels := make([]string, len(l.examples))
	for i, ex := range l.examples {
		labels[i] = ex.Label
	}
	return labels
}

// Examples returns a copy of all examples in library order.
func (l *Library) Examples() []Example {
	out := make([]Example, len(l.examples))
	copy(out, l.examples)
	return out
}

// Len returns the number of examples.
func (l *Library) Len() int { return len(l.examples) }
