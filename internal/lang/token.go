package lang

// Kind identifies a token class. Each keyword is its own kind so the
// parser can dispatch on the leading token of a statement directly.
type Kind int

const (
	KindInvalid Kind = iota

	KindIdentifier
	KindNumber
	KindString
	KindComma
	KindEquals
	KindLeftParen
	KindRightParen
	KindWhitespace

	KindAppend
	KindClear
	KindClearHeaders
	KindDelete
	KindDiscard
	KindDrop
	KindEffect
	KindExtract
	KindFirst
	KindGet
	KindHeader
	KindJoin
	KindLast
	KindLoad
	KindMarkdown
	KindPrepend
	KindRetain
	KindRun
	KindSelect
	KindStore
	KindTake
)

// keywords lists every keyword with its kind. Order matters: the lexer
// tries matchers in order and keeps the first of equal-length matches,
// so keywords stay ahead of the identifier matcher.
var keywords = []struct {
	text string
	kind Kind
}{
	{"append", KindAppend},
	{"clear", KindClear},
	{"clearheaders", KindClearHeaders},
	{"delete", KindDelete},
	{"discard", KindDiscard},
	{"drop", KindDrop},
	{"effect", KindEffect},
	{"extract", KindExtract},
	{"first", KindFirst},
	{"get", KindGet},
	{"header", KindHeader},
	{"join", KindJoin},
	{"last", KindLast},
	{"load", KindLoad},
	{"markdown", KindMarkdown},
	{"prepend", KindPrepend},
	{"retain", KindRetain},
	{"run", KindRun},
	{"select", KindSelect},
	{"store", KindStore},
	{"take", KindTake},
}

// String returns the display name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindIdentifier:
		return "Identifier"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindComma:
		return "Comma"
	case KindEquals:
		return "Equals"
	case KindLeftParen:
		return "LeftParenthesis"
	case KindRightParen:
		return "RightParenthesis"
	case KindWhitespace:
		return "Whitespace"
	case KindAppend:
		return "Append"
	case KindClear:
		return "Clear"
	case KindClearHeaders:
		return "ClearHeaders"
	case KindDelete:
		return "Delete"
	case KindDiscard:
		return "Discard"
	case KindDrop:
		return "Drop"
	case KindEffect:
		return "Effect"
	case KindExtract:
		return "Extract"
	case KindFirst:
		return "First"
	case KindGet:
		return "Get"
	case KindHeader:
		return "Header"
	case KindJoin:
		return "Join"
	case KindLast:
		return "Last"
	case KindLoad:
		return "Load"
	case KindMarkdown:
		return "Markdown"
	case KindPrepend:
		return "Prepend"
	case KindRetain:
		return "Retain"
	case KindRun:
		return "Run"
	case KindSelect:
		return "Select"
	case KindStore:
		return "Store"
	case KindTake:
		return "Take"
	default:
		return "Invalid"
	}
}

// Token is one lexed unit of script source. Text holds the matched text;
// for strings it is the content between the quotes with escape sequences
// left intact. PosAfter is the position one past the token, which the
// parser uses to report where input ran out.
type Token struct {
	Kind     Kind
	Text     string
	Pos      Position
	PosAfter Position
}
