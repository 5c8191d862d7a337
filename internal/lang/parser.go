package lang

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxSuggestDistance caps how far a misspelled word may be from a
// keyword before the parser stops suggesting it.
const maxSuggestDistance = 2

// Parse turns a token stream into an instruction list. Statements are
// keyword-led and terminated by whitespace or end of input; consecutive
// whitespace tokens are coalesced first, so the amount and kind of
// whitespace between statements never matters.
func Parse(tokens []Token) ([]Instruction, error) {
	p := &parser{tokens: coalesceWhitespace(tokens)}
	return p.parse()
}

// coalesceWhitespace collapses runs of whitespace tokens, keeping the
// first token of each run.
func coalesceWhitespace(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind == KindWhitespace && len(out) > 0 && out[len(out)-1].Kind == KindWhitespace {
			continue
		}
		out = append(out, tok)
	}
	return out
}

type parser struct {
	tokens []Token
	i      int
}

func (p *parser) parse() ([]Instruction, error) {
	var program []Instruction
	for {
		for p.i < len(p.tokens) && p.tokens[p.i].Kind == KindWhitespace {
			p.i++
		}
		if p.i >= len(p.tokens) {
			return program, nil
		}

		inst, err := p.statement()
		if err != nil {
			return nil, err
		}
		program = append(program, inst)
	}
}

// statement parses one statement starting at the current token, leaving
// the trailing separator for the outer loop.
func (p *parser) statement() (Instruction, error) {
	tok := p.tokens[p.i]
	p.i++

	switch tok.Kind {
	case KindAppend:
		text, err := p.stringOperand(tok.PosAfter)
		if err != nil {
			return nil, err
		}
		return Append{Text: text}, nil
	case KindClear:
		return Clear{}, p.terminator()
	case KindClearHeaders:
		return ClearHeaders{}, p.terminator()
	case KindDelete:
		pattern, err := p.stringOperand(tok.PosAfter)
		if err != nil {
			return nil, err
		}
		return Delete{Pattern: pattern}, nil
	case KindDiscard:
		pattern, err := p.stringOperand(tok.PosAfter)
		if err != nil {
			return nil, err
		}
		return Discard{Pattern: pattern}, nil
	case KindDrop:
		count, err := p.numberOperand(tok.PosAfter)
		if err != nil {
			return nil, err
		}
		return Drop{Count: count}, nil
	case KindEffect:
		name, args, kwargs, err := p.callOperand(tok.PosAfter)
		if err != nil {
			return nil, err
		}
		return EffectCall{Name: name, Args: args, Kwargs: kwargs}, nil
	case KindExtract:
		pattern, err := p.stringOperand(tok.PosAfter)
		if err != nil {
			return nil, err
		}
		return Extract{Pattern: pattern}, nil
	case KindFirst:
		return First{}, p.terminator()
	case KindGet:
		url, err := p.stringOperand(tok.PosAfter)
		if err != nil {
			return nil, err
		}
		return Get{URL: url}, nil
	case KindHeader:
		after, err := p.separator(tok.PosAfter)
		if err != nil {
			return nil, err
		}
		key, after, err := p.str(after)
		if err != nil {
			return nil, err
		}
		after, err = p.separator(after)
		if err != nil {
			return nil, err
		}
		value, _, err := p.str(after)
		if err != nil {
			return nil, err
		}
		return Header{Key: key, Value: value}, p.terminator()
	case KindJoin:
		sep, err := p.stringOperand(tok.PosAfter)
		if err != nil {
			return nil, err
		}
		return Join{Separator: sep}, nil
	case KindLast:
		return Last{}, p.terminator()
	case KindLoad:
		name, err := p.identOperand(tok.PosAfter)
		if err != nil {
			return nil, err
		}
		return Load{Var: name}, nil
	case KindMarkdown:
		return Markdown{}, p.terminator()
	case KindPrepend:
		text, err := p.stringOperand(tok.PosAfter)
		if err != nil {
			return nil, err
		}
		return Prepend{Text: text}, nil
	case KindRetain:
		pattern, err := p.stringOperand(tok.PosAfter)
		if err != nil {
			return nil, err
		}
		return Retain{Pattern: pattern}, nil
	case KindRun:
		name, args, kwargs, err := p.callOperand(tok.PosAfter)
		if err != nil {
			return nil, err
		}
		return RunCall{Script: name, Args: args, Kwargs: kwargs}, nil
	case KindSelect:
		sel, err := p.stringOperand(tok.PosAfter)
		if err != nil {
			return nil, err
		}
		return Select{Selector: sel}, nil
	case KindStore:
		name, err := p.identOperand(tok.PosAfter)
		if err != nil {
			return nil, err
		}
		return Store{Var: name}, nil
	case KindTake:
		count, err := p.numberOperand(tok.PosAfter)
		if err != nil {
			return nil, err
		}
		return Take{Count: count}, nil
	default:
		if tok.Kind == KindIdentifier {
			if kw, ok := nearestKeyword(tok.Text); ok {
				return nil, &ParseError{
					Pos: tok.Pos,
					Msg: fmt.Sprintf("Syntax error, unexpected `%s` at line %d column %d (did you mean `%s`?)",
						tok.Kind, tok.Pos.Row, tok.Pos.Col, kw),
				}
			}
		}
		return nil, errSyntaxUnexpected(tok)
	}
}

// stringOperand parses ` STRING` after a keyword and checks the
// statement terminator.
func (p *parser) stringOperand(after Position) (string, error) {
	after, err := p.separator(after)
	if err != nil {
		return "", err
	}
	text, _, err := p.str(after)
	if err != nil {
		return "", err
	}
	return text, p.terminator()
}

// numberOperand parses ` NUMBER` after a keyword and checks the
// statement terminator.
func (p *parser) numberOperand(after Position) (int, error) {
	after, err := p.separator(after)
	if err != nil {
		return 0, err
	}
	n, _, err := p.number(after)
	if err != nil {
		return 0, err
	}
	return n, p.terminator()
}

// identOperand parses ` IDENT` after a keyword and checks the statement
// terminator.
func (p *parser) identOperand(after Position) (string, error) {
	after, err := p.separator(after)
	if err != nil {
		return "", err
	}
	name, _, err := p.ident(after)
	if err != nil {
		return "", err
	}
	return name, p.terminator()
}

// callOperand parses ` IDENT callargs?` after an effect or run keyword
// and checks the statement terminator.
func (p *parser) callOperand(after Position) (string, []Arg, map[string]Arg, error) {
	after, err := p.separator(after)
	if err != nil {
		return "", nil, nil, err
	}
	name, after, err := p.ident(after)
	if err != nil {
		return "", nil, nil, err
	}
	args, kwargs, err := p.callArgs(after)
	if err != nil {
		return "", nil, nil, err
	}
	return name, args, kwargs, p.terminator()
}

// separator consumes the whitespace between a keyword and its operands.
// after is where the previous token ended, for the EOF message.
func (p *parser) separator(after Position) (Position, error) {
	if p.i >= len(p.tokens) {
		return Position{}, errEOF(after.Row)
	}
	tok := p.tokens[p.i]
	if tok.Kind != KindWhitespace {
		return Position{}, errSyntaxUnexpected(tok)
	}
	p.i++
	return tok.PosAfter, nil
}

// terminator checks that the statement is followed by whitespace or the
// end of input. The whitespace is left for the statement loop.
func (p *parser) terminator() error {
	if p.i >= len(p.tokens) {
		return nil
	}
	if tok := p.tokens[p.i]; tok.Kind != KindWhitespace {
		return errSyntaxUnexpected(tok)
	}
	return nil
}

func (p *parser) str(after Position) (string, Position, error) {
	if p.i >= len(p.tokens) {
		return "", Position{}, errEOF(after.Row)
	}
	tok := p.tokens[p.i]
	if tok.Kind != KindString {
		return "", Position{}, errExpected("String", tok)
	}
	p.i++
	return unescape(tok.Text), tok.PosAfter, nil
}

func (p *parser) number(after Position) (int, Position, error) {
	if p.i >= len(p.tokens) {
		return 0, Position{}, errEOF(after.Row)
	}
	tok := p.tokens[p.i]
	if tok.Kind != KindNumber {
		return 0, Position{}, errExpected("Number", tok)
	}
	n, err := strconv.Atoi(tok.Text)
	if err != nil {
		return 0, Position{}, &ParseError{
			Pos: tok.Pos,
			Msg: fmt.Sprintf("Number out of range at line %d column %d", tok.Pos.Row, tok.Pos.Col),
		}
	}
	p.i++
	return n, tok.PosAfter, nil
}

func (p *parser) ident(after Position) (string, Position, error) {
	if p.i >= len(p.tokens) {
		return "", Position{}, errEOF(after.Row)
	}
	tok := p.tokens[p.i]
	if tok.Kind != KindIdentifier {
		return "", Position{}, errExpected("Identifier", tok)
	}
	p.i++
	return tok.Text, tok.PosAfter, nil
}

// callArgs parses an optional parenthesized argument list. Arguments are
// strings or identifiers; `name=value` pairs become keyword arguments.
// Whitespace is free inside the parentheses. Without an opening
// parenthesis nothing is consumed and the call has no arguments.
func (p *parser) callArgs(after Position) ([]Arg, map[string]Arg, error) {
	j := p.i
	for j < len(p.tokens) && p.tokens[j].Kind == KindWhitespace {
		j++
	}
	if j >= len(p.tokens) || p.tokens[j].Kind != KindLeftParen {
		return nil, nil, nil
	}

	var args []Arg
	var kwargs map[string]Arg
	setKwarg := func(name string, arg Arg) {
		if kwargs == nil {
			kwargs = make(map[string]Arg)
		}
		kwargs[name] = arg
	}

	last := p.tokens[j].PosAfter
	i := j + 1
	needComma := false

	for {
		for i < len(p.tokens) && p.tokens[i].Kind == KindWhitespace {
			i++
		}
		if i >= len(p.tokens) {
			return nil, nil, errEOF(last.Row)
		}
		tok := p.tokens[i]

		switch {
		case tok.Kind == KindString && !needComma:
			args = append(args, Arg{Kind: ArgString, Value: unescape(tok.Text)})
			last = tok.PosAfter
			needComma = true
			i++
		case tok.Kind == KindIdentifier && !needComma:
			k := i + 1
			for k < len(p.tokens) && p.tokens[k].Kind == KindWhitespace {
				k++
			}
			if k < len(p.tokens) && p.tokens[k].Kind == KindEquals {
				v := k + 1
				for v < len(p.tokens) && p.tokens[v].Kind == KindWhitespace {
					v++
				}
				if v >= len(p.tokens) {
					return nil, nil, errEOF(tok.PosAfter.Row)
				}
				val := p.tokens[v]
				switch val.Kind {
				case KindString:
					setKwarg(tok.Text, Arg{Kind: ArgString, Value: unescape(val.Text)})
				case KindIdentifier:
					setKwarg(tok.Text, Arg{Kind: ArgIdent, Value: val.Text})
				default:
					return nil, nil, errUnexpected(val)
				}
				last = val.PosAfter
				needComma = true
				i = v + 1
			} else {
				args = append(args, Arg{Kind: ArgIdent, Value: tok.Text})
				last = tok.PosAfter
				needComma = true
				i++
			}
		case tok.Kind == KindComma && needComma:
			last = tok.PosAfter
			needComma = false
			i++
		case tok.Kind == KindRightParen:
			p.i = i + 1
			return args, kwargs, nil
		default:
			return nil, nil, errUnexpected(tok)
		}
	}
}

// unescape resolves backslash escapes in a string literal: the backslash
// drops and the following character is kept verbatim.
func unescape(text string) string {
	if !strings.ContainsRune(text, '\\') {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	escaped := false
	for _, r := range text {
		switch {
		case escaped:
			escaped = false
			b.WriteRune(r)
		case r == '\\':
			escaped = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// nearestKeyword returns the keyword closest to word by edit distance,
// when close enough to look like a typo.
func nearestKeyword(word string) (string, bool) {
	best := ""
	bestDist := maxSuggestDistance + 1
	for _, kw := range keywords {
		if d := levenshtein.ComputeDistance(word, kw.text); d < bestDist {
			best, bestDist = kw.text, d
		}
	}
	return best, best != ""
}
