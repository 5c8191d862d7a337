// Package lang implements the scrapekit script language: a small
// keyword-led DSL whose statements drive a scrape pipeline. The package
// covers the whole path from source text to execution: StripComments
// removes comment lines, Lex turns source into positioned tokens, Parse
// produces an instruction list, and Runner executes instructions against
// a scraper, dispatching effect invocations to a caller-supplied sink.
//
// Scripts are whitespace-separated statements, not line-bound:
//
//	get "https://example.org/news"
//	extract "<h2>(.+?)</h2>"
//	retain "[A-Z]"
//	effect notify(title="news")
//
// Positions are 1-based and columns count characters, so error messages
// point at what an editor shows.
package lang

import "fmt"

// Position is a row and column in script source, both 1-based.
type Position struct {
	Row int
	Col int
}

// ParseError is a lexing or parsing failure at a known source position.
// The message is preformatted for display; Pos carries the location for
// callers that want it structurally.
type ParseError struct {
	Pos Position
	Msg string
}

func (e *ParseError) Error() string {
	return e.Msg
}

func errSyntax(pos Position) *ParseError {
	return &ParseError{
		Pos: pos,
		Msg: fmt.Sprintf("Syntax error at line %d column %d", pos.Row, pos.Col),
	}
}

func errUnterminated(pos Position, name string, consumed int) *ParseError {
	return &ParseError{
		Pos: pos,
		Msg: fmt.Sprintf("Unterminated %s at line %d, column %d", name, pos.Row, pos.Col+consumed),
	}
}

func errExpected(want string, tok Token) *ParseError {
	return &ParseError{
		Pos: tok.Pos,
		Msg: fmt.Sprintf("Expected `%s` but found `%s` at line %d column %d",
			want, tok.Kind, tok.Pos.Row, tok.Pos.Col),
	}
}

// errSyntaxUnexpected reports a token that cannot start or terminate a
// statement.
func errSyntaxUnexpected(tok Token) *ParseError {
	return &ParseError{
		Pos: tok.Pos,
		Msg: fmt.Sprintf("Syntax error, unexpected `%s` at line %d column %d",
			tok.Kind, tok.Pos.Row, tok.Pos.Col),
	}
}

// errUnexpected reports a token that is invalid inside an argument list.
func errUnexpected(tok Token) *ParseError {
	return &ParseError{
		Pos: tok.Pos,
		Msg: fmt.Sprintf("Unexpected `%s` at line %d column %d",
			tok.Kind, tok.Pos.Row, tok.Pos.Col),
	}
}

func errEOF(row int) *ParseError {
	return &ParseError{
		Pos: Position{Row: row},
		Msg: fmt.Sprintf("Unexpected EOF at line %d", row),
	}
}
