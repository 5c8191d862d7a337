package lang

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/scrapekit-ai/scrapekit/internal/effect"
	"github.com/scrapekit-ai/scrapekit/internal/logging"
	"github.com/scrapekit-ai/scrapekit/internal/scrape"
)

// ErrVariableNotFound is returned when a script references a variable
// that was never bound.
var ErrVariableNotFound = errors.New("no such variable")

// ScriptLoader resolves a script name to its source text.
type ScriptLoader interface {
	Load(name string) (string, error)
}

// LoadFunc adapts a plain function to the ScriptLoader interface.
type LoadFunc func(name string) (string, error)

func (f LoadFunc) Load(name string) (string, error) {
	return f(name)
}

// EffectFunc receives the effect invocations a running script emits.
// Delivery errors are logged, not propagated, so a failing effect never
// aborts the script.
type EffectFunc func(ctx context.Context, inv effect.Invocation) error

// Runner executes scripts. Each run loads the named script, strips
// comments, lexes and parses it, then executes the instructions against
// a fresh scraper backed by the runner's driver.
type Runner struct {
	loader  ScriptLoader
	driver  scrape.Driver
	effects EffectFunc
}

// NewRunner returns a runner. effects may be nil when invocations are
// not of interest.
func NewRunner(loader ScriptLoader, driver scrape.Driver, effects EffectFunc) *Runner {
	return &Runner{loader: loader, driver: driver, effects: effects}
}

// Run executes the named script and returns its final results.
//
// Positional args are bound to the variables `1`..`n`, kwargs to their
// keys, each as a single-element list. The variables are visible to
// `{name}` substitution in string operands, to `load`, and as call
// arguments. Errors carry the script name; for nested `run` statements
// the chain names every script down to the failure.
func (r *Runner) Run(ctx context.Context, name string, args []string, kwargs map[string]string) ([]string, error) {
	results, err := r.runScript(ctx, name, args, kwargs)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}
	return results, nil
}

func (r *Runner) runScript(ctx context.Context, name string, args []string, kwargs map[string]string) ([]string, error) {
	source, err := r.loader.Load(name)
	if err != nil {
		return nil, err
	}

	tokens, err := Lex(StripComments(source))
	if err != nil {
		return nil, err
	}

	program, err := Parse(tokens)
	if err != nil {
		return nil, err
	}

	vars := make(map[string][]string, len(args)+len(kwargs))
	for i, arg := range args {
		vars[strconv.Itoa(i+1)] = []string{arg}
	}
	for key, val := range kwargs {
		vars[key] = []string{val}
	}

	s := scrape.New(r.driver)
	for _, inst := range program {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err = r.exec(ctx, s, inst, vars)
		if err != nil {
			return nil, err
		}
	}

	return s.Results(), nil
}

func (r *Runner) exec(ctx context.Context, s scrape.Scraper, inst Instruction, vars map[string][]string) (scrape.Scraper, error) {
	switch inst := inst.(type) {
	case Append:
		text, err := substitute(inst.Text, vars)
		if err != nil {
			return s, err
		}
		return s.Append(text), nil
	case Clear:
		return s.Clear(), nil
	case ClearHeaders:
		return s.ClearHeaders(), nil
	case Delete:
		pattern, err := substitute(inst.Pattern, vars)
		if err != nil {
			return s, err
		}
		return s.Delete(pattern)
	case Discard:
		pattern, err := substitute(inst.Pattern, vars)
		if err != nil {
			return s, err
		}
		return s.Discard(pattern)
	case Drop:
		return s.Drop(inst.Count), nil
	case EffectCall:
		return s, r.emit(ctx, s, inst, vars)
	case Extract:
		pattern, err := substitute(inst.Pattern, vars)
		if err != nil {
			return s, err
		}
		return s.Extract(pattern)
	case First:
		return s.First(), nil
	case Get:
		url, err := substitute(inst.URL, vars)
		if err != nil {
			return s, err
		}
		return s.Get(ctx, url)
	case Header:
		key, err := substitute(inst.Key, vars)
		if err != nil {
			return s, err
		}
		value, err := substitute(inst.Value, vars)
		if err != nil {
			return s, err
		}
		return s.Header(key, value), nil
	case Join:
		sep, err := substitute(inst.Separator, vars)
		if err != nil {
			return s, err
		}
		return s.Join(sep), nil
	case Last:
		return s.Last(), nil
	case Load:
		stored, ok := vars[inst.Var]
		if !ok {
			return s, fmt.Errorf("%w: %s", ErrVariableNotFound, inst.Var)
		}
		return s.WithResults(append(s.Results(), stored...)), nil
	case Markdown:
		return s.Markdown()
	case Prepend:
		text, err := substitute(inst.Text, vars)
		if err != nil {
			return s, err
		}
		return s.Prepend(text), nil
	case Retain:
		pattern, err := substitute(inst.Pattern, vars)
		if err != nil {
			return s, err
		}
		return s.Retain(pattern)
	case RunCall:
		callArgs, callKwargs, err := resolveCall(s, inst.Args, inst.Kwargs, vars)
		if err != nil {
			return s, err
		}
		sub, err := r.Run(ctx, inst.Script, callArgs, callKwargs)
		if err != nil {
			return s, err
		}
		return s.WithResults(append(s.Results(), sub...)), nil
	case Select:
		sel, err := substitute(inst.Selector, vars)
		if err != nil {
			return s, err
		}
		return s.Select(sel)
	case Store:
		vars[inst.Var] = s.Results()
		return s, nil
	case Take:
		return s.Take(inst.Count), nil
	default:
		return s, fmt.Errorf("unhandled instruction %s", inst.Op())
	}
}

// emit resolves an effect call's arguments and hands the invocation to
// the effect sink.
func (r *Runner) emit(ctx context.Context, s scrape.Scraper, call EffectCall, vars map[string][]string) error {
	args, kwargs, err := resolveCall(s, call.Args, call.Kwargs, vars)
	if err != nil {
		return err
	}
	if r.effects == nil {
		return nil
	}
	inv := effect.Invocation{Name: call.Name, Args: args, Kwargs: kwargs}
	if err := r.effects(ctx, inv); err != nil {
		logging.Warn().Err(err).Str("effect", call.Name).Msg("effect delivery failed")
	}
	return nil
}

// resolveCall produces the concrete argument values for an effect or
// run call. When the call has no explicit positional arguments the
// current results are passed instead; explicit arguments suppress that.
func resolveCall(s scrape.Scraper, args []Arg, kwargs map[string]Arg, vars map[string][]string) ([]string, map[string]string, error) {
	if len(args) == 0 {
		kw, err := resolveKwargs(kwargs, vars)
		if err != nil {
			return nil, nil, err
		}
		return s.Results(), kw, nil
	}

	resolved := make([]string, 0, len(args))
	for _, arg := range args {
		val, err := resolveArg(arg, vars)
		if err != nil {
			return nil, nil, err
		}
		resolved = append(resolved, val)
	}
	kw, err := resolveKwargs(kwargs, vars)
	return resolved, kw, err
}

func resolveKwargs(kwargs map[string]Arg, vars map[string][]string) (map[string]string, error) {
	resolved := make(map[string]string, len(kwargs))
	for key, arg := range kwargs {
		val, err := resolveArg(arg, vars)
		if err != nil {
			return nil, err
		}
		resolved[key] = val
	}
	return resolved, nil
}

func resolveArg(arg Arg, vars map[string][]string) (string, error) {
	if arg.Kind == ArgIdent {
		val, ok := vars[arg.Value]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrVariableNotFound, arg.Value)
		}
		return strings.Join(val, ""), nil
	}
	return substitute(arg.Value, vars)
}

var variableRef = regexp.MustCompile(`\{(.+?)\}`)

// substitute expands every {name} reference in text with the variable's
// elements concatenated. Expansion is a single pass over the original
// text; substituted values are not scanned again.
func substitute(text string, vars map[string][]string) (string, error) {
	matches := variableRef.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		name := text[m[2]:m[3]]
		val, ok := vars[name]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrVariableNotFound, name)
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(strings.Join(val, ""))
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String(), nil
}
