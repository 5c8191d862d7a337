package lang

// ArgKind discriminates call argument values.
type ArgKind int

const (
	// ArgString is a literal string value.
	ArgString ArgKind = iota
	// ArgIdent names a variable resolved at execution time.
	ArgIdent
)

// Arg is one argument in an effect or run call.
type Arg struct {
	Kind  ArgKind
	Value string
}

// Instruction is one executable statement. Op returns the statement
// keyword.
type Instruction interface {
	Op() string
}

// Append adds text to the end of every result.
type Append struct {
	Text string
}

// Clear empties the result list.
type Clear struct{}

// ClearHeaders empties the request header set.
type ClearHeaders struct{}

// Delete removes every match of a pattern from each result.
type Delete struct {
	Pattern string
}

// Discard drops results matching a pattern.
type Discard struct {
	Pattern string
}

// Drop removes the first n results.
type Drop struct {
	Count int
}

// EffectCall invokes a named effect with call arguments.
type EffectCall struct {
	Name   string
	Args   []Arg
	Kwargs map[string]Arg
}

// Extract replaces the results with every match of a pattern.
type Extract struct {
	Pattern string
}

// First keeps only the first result.
type First struct{}

// Get fetches a URL and appends the body as one result.
type Get struct {
	URL string
}

// Header sets a request header for subsequent fetches.
type Header struct {
	Key   string
	Value string
}

// Join collapses the results into one, glued by a separator.
type Join struct {
	Separator string
}

// Last keeps only the last result.
type Last struct{}

// Load appends a variable's elements to the results.
type Load struct {
	Var string
}

// Markdown converts each HTML result to markdown.
type Markdown struct{}

// Prepend adds text to the start of every result.
type Prepend struct {
	Text string
}

// Retain keeps only results matching a pattern.
type Retain struct {
	Pattern string
}

// RunCall executes another script and appends its results.
type RunCall struct {
	Script string
	Args   []Arg
	Kwargs map[string]Arg
}

// Select replaces each result with the text of CSS selector matches.
type Select struct {
	Selector string
}

// Store snapshots the results into a variable.
type Store struct {
	Var string
}

// Take keeps only the first n results.
type Take struct {
	Count int
}

func (Append) Op() string       { return "append" }
func (Clear) Op() string        { return "clear" }
func (ClearHeaders) Op() string { return "clearheaders" }
func (Delete) Op() string       { return "delete" }
func (Discard) Op() string      { return "discard" }
func (Drop) Op() string         { return "drop" }
func (EffectCall) Op() string   { return "effect" }
func (Extract) Op() string      { return "extract" }
func (First) Op() string        { return "first" }
func (Get) Op() string          { return "get" }
func (Header) Op() string       { return "header" }
func (Join) Op() string         { return "join" }
func (Last) Op() string         { return "last" }
func (Load) Op() string         { return "load" }
func (Markdown) Op() string     { return "markdown" }
func (Prepend) Op() string      { return "prepend" }
func (Retain) Op() string       { return "retain" }
func (RunCall) Op() string      { return "run" }
func (Select) Op() string       { return "select" }
func (Store) Op() string        { return "store" }
func (Take) Op() string         { return "take" }
