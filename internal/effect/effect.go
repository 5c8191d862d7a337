// Package effect implements the side effect channel of the script
// language. Scripts declare effects by name with `effect name(args)`;
// the built-ins cover printing, desktop notifications and running user
// commands. A Registry maps names to implementations, and a Pump
// executes the invocations a daemon job publishes on the event bus,
// optionally deduplicating repeats.
package effect

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// ErrEffect marks a failed effect execution. The capitalized text is
// user-facing: effect failures surface verbatim in CLI output.
var ErrEffect = errors.New("Effect error")

// Invocation is one `effect name(args)` statement with all variables
// resolved.
type Invocation struct {
	Name   string            `json:"name"`
	Args   []string          `json:"args,omitempty"`
	Kwargs map[string]string `json:"kwargs,omitempty"`
}

// Hash returns a stable FNV-1a hash of the invocation for
// deduplication. Kwargs are folded in key order so map iteration order
// cannot change the hash.
func (inv Invocation) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(inv.Name))
	h.Write([]byte{0})
	for _, arg := range inv.Args {
		h.Write([]byte(arg))
		h.Write([]byte{0})
	}

	keys := make([]string, 0, len(inv.Kwargs))
	for key := range inv.Kwargs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		h.Write([]byte(key))
		h.Write([]byte{'='})
		h.Write([]byte(inv.Kwargs[key]))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// Options control how a built-in effect runs.
type Options struct {
	// Silent suppresses the outward side effect while still validating
	// keyword arguments. Used by tests and the book harness.
	Silent bool

	// Stdout overrides where print-style output goes. Nil means
	// os.Stdout.
	Stdout io.Writer
}

func (o Options) stdout() io.Writer {
	if o.Stdout != nil {
		return o.Stdout
	}
	return os.Stdout
}

// Func is an effect implementation.
type Func func(ctx context.Context, args []string, kwargs map[string]string, opts Options) error

// unknownKwargKeys returns the kwarg keys outside the valid set,
// sorted.
func unknownKwargKeys(valid []string, kwargs map[string]string) []string {
	var bad []string
	for key := range kwargs {
		if !slices.Contains(valid, key) {
			bad = append(bad, key)
		}
	}
	sort.Strings(bad)
	return bad
}

// invalidKwargsMessage names the offending and the valid keyword
// arguments of an effect.
func invalidKwargsMessage(name string, valid, bad []string) string {
	return fmt.Sprintf("Invalid keyword argument(s) passed to `%s`: %s, valid keywords are: %s",
		name, quoteList(bad), quoteList(valid))
}

// checkKwargs validates kwargs against an effect's valid set.
func checkKwargs(name string, valid []string, kwargs map[string]string) error {
	if bad := unknownKwargKeys(valid, kwargs); len(bad) > 0 {
		return fmt.Errorf("%w: %s", ErrEffect, invalidKwargsMessage(name, valid, bad))
	}
	return nil
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = strconv.Quote(item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
