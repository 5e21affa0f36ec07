package stdlib

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"

	"github.com/ardnew/vexpr/lang"
)

// ErrFunctionFile indicates a malformed function definition file.
var ErrFunctionFile = lang.ErrParse.Derive("invalid function file")

// ExprDef defines a function written in expr-lang.
type ExprDef struct {
	Params []string `yaml:"params,omitempty"`
	Body   string   `yaml:"body"`
}

// functionFile is the document read by LoadYAML:
//
//	functions:
//	  area:
//	    params: [w, h]
//	    body: w * h
type functionFile struct {
	Functions map[string]ExprDef `yaml:"functions"`
}

// LoadYAML reads expr-lang function definitions from r and registers each
// of them. It returns the names registered, in sorted order. An empty input
// registers nothing.
func (r *Registry) LoadYAML(ctx context.Context, src io.Reader) ([]string, error) {
	ra := readahead.NewReader(src)
	defer ra.Close()

	var doc functionFile

	err := yaml.NewDecoder(ra, yaml.DisallowUnknownField()).
		DecodeContext(ctx, &doc)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, ErrFunctionFile.Wrap(err)
	}

	names, err := r.Define(doc.Functions)
	if err != nil {
		return nil, err
	}

	r.logger.DebugContext(ctx, "loaded function file",
		slog.Int("functions", len(names)))

	return names, nil
}

// Define registers every function in defs, in sorted order, and returns the
// names registered. It stops at the first definition that fails.
func (r *Registry) Define(defs map[string]ExprDef) ([]string, error) {
	names := slices.Sorted(maps.Keys(defs))

	for _, name := range names {
		def := defs[name]
		if def.Body == "" {
			return nil, ErrFunctionFile.WithDetail(name + ": missing body").
				With(slog.String("function", name))
		}

		if err := r.RegisterExpr(name, def.Params, def.Body); err != nil {
			return nil, err
		}
	}

	return names, nil
}
