package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"log/slog"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/vexpr/log"
)

// Cache shares compiled programs between identical sources. Programs
// returned for the same source and options are the same *Program and so
// share variable storage.
type Cache struct {
	entries sync.Map // key → *state
	logger  log.Logger
}

// state tracks compilation of one cache entry.
type state struct {
	once sync.Once
	prog *Program
	err  error
}

// NewCache returns an empty Cache that traces lookups to logger.
func NewCache(logger log.Logger) *Cache {
	return &Cache{logger: logger}
}

// hashOptions encodes options using gob and hashes with xxh3.
// Returns a hash that uniquely identifies the options configuration.
func hashOptions(opts options) uint64 {
	var buf bytes.Buffer

	_ = gob.NewEncoder(&buf).Encode(opts)

	return xxh3.Hash(buf.Bytes())
}

// Compile returns the cached program for source and opts, compiling it on
// first use. Compilation errors are cached as well. Programs compiled into
// a caller-supplied Scope bypass the cache.
func (c *Cache) Compile(
	ctx context.Context,
	source string,
	opts ...Option,
) (*Program, error) {
	// Build a temporary program to get effective options
	var probe Program

	applyDefaults(&probe)
	applyOptions(&probe, opts...)

	if probe.scope != nil {
		c.logger.TraceContext(ctx, "cache bypass",
			slog.Bool("scope", true))

		return Compile(ctx, source, opts...)
	}

	// Combine source hash with options hash for cache key uniqueness
	sourceHash := xxh3.Hash([]byte(source))
	optsHash := hashOptions(probe.opts)
	key := strconv.FormatUint(sourceHash^optsHash, 36)

	value, hit := c.entries.LoadOrStore(key, new(state))

	entry, ok := value.(*state)
	if !ok {
		return nil, ErrReadInput.
			With(slog.String("issue", "invalid entry type in cache"))
	}

	c.logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(optsHash, 16)),
		slog.Bool("cache_hit", hit))

	entry.once.Do(func() {
		entry.prog, entry.err = Compile(ctx, source, opts...)
	})

	return entry.prog, entry.err
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	n := 0

	c.entries.Range(func(any, any) bool {
		n++

		return true
	})

	return n
}

// Clear removes every cached entry.
func (c *Cache) Clear() {
	c.entries.Clear()
}
