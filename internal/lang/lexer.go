package lang

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	numberPattern     = regexp.MustCompile(`^[1-9][0-9]*`)
	identifierPattern = regexp.MustCompile(`^[A-Za-z_$.-][A-Za-z0-9_$.-]*`)
	spacesPattern     = regexp.MustCompile(`^[ \t]+`)
	newlinePattern    = regexp.MustCompile(`^\r?\n`)
)

var punctuation = []struct {
	text string
	kind Kind
}{
	{",", KindComma},
	{"=", KindEquals},
	{"(", KindLeftParen},
	{")", KindRightParen},
}

// Lex splits script source into tokens, including whitespace tokens, so
// the parser can use whitespace as the statement separator. The longest
// match at each position wins; on equal length the earlier matcher wins,
// which is what makes `append` a keyword while `appendx` stays an
// identifier.
func Lex(src string) ([]Token, error) {
	var tokens []Token
	pos := Position{Row: 1, Col: 1}
	rest := src

	for len(rest) > 0 {
		if rest[0] == '"' {
			size, ok := scanString(rest)
			if !ok {
				return nil, errUnterminated(pos, "String", utf8.RuneCountInString(rest))
			}
			after := positionAfter(pos, rest[:size])
			tokens = append(tokens, Token{
				Kind:     KindString,
				Text:     rest[1 : size-1],
				Pos:      pos,
				PosAfter: after,
			})
			rest = rest[size:]
			pos = after
			continue
		}

		kind, size := match(rest)
		if size == 0 {
			return nil, errSyntax(pos)
		}
		after := positionAfter(pos, rest[:size])
		tokens = append(tokens, Token{
			Kind:     kind,
			Text:     rest[:size],
			Pos:      pos,
			PosAfter: after,
		})
		rest = rest[size:]
		pos = after
	}

	return tokens, nil
}

// match returns the kind and byte length of the longest token at the
// start of src, or a zero length when nothing matches.
func match(src string) (Kind, int) {
	kind, size := KindInvalid, 0
	consider := func(k Kind, n int) {
		if n > size {
			kind, size = k, n
		}
	}

	for _, kw := range keywords {
		if strings.HasPrefix(src, kw.text) {
			consider(kw.kind, len(kw.text))
		}
	}
	for _, p := range punctuation {
		if strings.HasPrefix(src, p.text) {
			consider(p.kind, len(p.text))
		}
	}
	consider(KindNumber, len(numberPattern.FindString(src)))
	consider(KindIdentifier, len(identifierPattern.FindString(src)))
	consider(KindWhitespace, len(spacesPattern.FindString(src)))
	consider(KindWhitespace, len(newlinePattern.FindString(src)))

	return kind, size
}

// scanString measures a double-quoted string at the start of src,
// returning its byte length including both quotes. A backslash makes the
// next character literal, so escaped quotes do not terminate the string
// and strings may span lines. ok is false when the closing quote is
// missing.
func scanString(src string) (size int, ok bool) {
	size = 1
	escaped := false
	for _, r := range src[1:] {
		if escaped {
			escaped = false
		} else if r == '"' {
			return size + 1, true
		} else if r == '\\' {
			escaped = true
		}
		size += utf8.RuneLen(r)
	}
	return size, false
}

// positionAfter advances pos over text, counting characters and
// resetting the column at newlines.
func positionAfter(pos Position, text string) Position {
	for _, r := range text {
		if r == '\n' {
			pos.Row++
			pos.Col = 1
		} else {
			pos.Col++
		}
	}
	return pos
}
