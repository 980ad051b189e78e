package classifier

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// LoadError is returned when the artifact is missing, unreadable or
// incompatible with the running code. It is fatal at startup.
type LoadError struct {
	Path  string
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load classifier %q: %v", e.Path, e.Cause)
}

// Is reports ErrStartupLoad as the kind of every LoadError.
func (e *LoadError) Is(target error) bool { return target == ErrStartupLoad }

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error { return e.Cause }

// loadOptions holds the compatibility expectations checked by Load.
type loadOptions struct {
	columns []string
	classes []string
}

// LoadOption applies a compatibility check to Load.
type LoadOption func(*loadOptions)

// WithColumns requires the artifact's columns to equal cols, in order.
func WithColumns(cols []string) LoadOption {
	return func(o *loadOptions) {
		o.columns = cols
	}
}

// WithClasses requires the artifact's classes to equal labels, in order.
func WithClasses(labels []string) LoadOption {
	return func(o *loadOptions) {
		o.classes = labels
	}
}

// Load reads a LogisticPipeline from a YAML or JSON document at path.
// JSON is accepted because it is valid YAML.
func Load(path string, opts ...LoadOption) (*LogisticPipeline, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}
	p, err := Decode(data)
	if err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}
	if o.columns != nil && !slices.Equal(p.Columns, o.columns) {
		return nil, &LoadError{Path: path, Cause: fmt.Errorf("columns %v do not match expected %v", p.Columns, o.columns)}
	}
	if o.classes != nil && !slices.Equal(p.Classes, o.classes) {
		return nil, &LoadError{Path: path, Cause: fmt.Errorf("classes %v do not match expected %v", p.Classes, o.classes)}
	}
	p.Path = path
	return p, nil
}

// Decode parses and validates an artifact document.
func Decode(data []byte) (*LogisticPipeline, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty artifact")
	}
	var p LogisticPipeline
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("invalid artifact: %w", err)
	}
	return &p, nil
}
