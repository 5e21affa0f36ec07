package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"

	"github.com/ardnew/vexpr/cli/cmd"
	"github.com/ardnew/vexpr/lang/stdlib"
	"github.com/ardnew/vexpr/log"
)

// functionsKey is the configuration key holding expr-lang function
// definitions. It never resolves a flag.
const functionsKey = cmd.FunctionsKey

// config is a [kong.Resolver] backed by a YAML configuration file.
//
// Top-level keys name flags, using either the flag's hyphenated name or the
// same name with underscores:
//
//	log-level: debug
//	log_format: text
//	log-pretty: false
//	functions:
//	  area:
//	    params: [w, h]
//	    body: w * h
//
// The functions key is not a flag. It defines functions available to every
// expression, in the format read by [stdlib.Registry.LoadYAML].
//
// Command-line flags override config file values.
type config struct {
	flags     map[string]any
	functions map[string]stdlib.ExprDef
}

// document is the typed view of the configuration file.
type document struct {
	Functions map[string]stdlib.ExprDef `yaml:"functions"`
}

// resolve returns a [kong.ConfigurationLoader] that decodes a YAML
// configuration file into conf. A malformed file is logged and ignored.
func resolve(
	ctx context.Context,
	conf *config,
) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		ra := readahead.NewReader(r)
		defer ra.Close()

		data, err := io.ReadAll(ra)
		if err != nil {
			return nil, err
		}

		var (
			flags map[string]any
			doc   document
		)

		err = yaml.UnmarshalContext(ctx, data, &flags)
		if err == nil {
			err = yaml.UnmarshalContext(ctx, data, &doc)
		}

		if err != nil && !errors.Is(err, io.EOF) {
			log.WarnContext(ctx, "ignoring invalid configuration",
				slog.Any("error", err))

			return conf, nil
		}

		delete(flags, functionsKey)

		conf.flags = make(map[string]any, len(flags))
		for key, value := range flags {
			conf.flags[key] = flagValue(value)
		}

		conf.functions = doc.Functions

		return conf, nil
	}
}

// flagValue converts a decoded YAML value into a form kong can parse.
// Kong requires numbers as strings.
func flagValue(value any) any {
	switch v := value.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = flagValue(elem)
		}

		return out
	default:
		return value
	}
}

// Validate implements [kong.Resolver].
func (c *config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (c *config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := c.flags[flag.Name]; ok {
		return value, nil
	}

	if value, ok := c.flags[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil
}
