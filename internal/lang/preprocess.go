package lang

import "regexp"

var commentLine = regexp.MustCompile(`(?m)^\s*#.*(\r?\n)?`)

// StripComments removes comment lines before lexing. A comment line is
// any line whose first non-whitespace character is `#`; the line is
// removed together with its newline. Only whole lines are comments, a
// `#` after a statement is not.
func StripComments(src string) string {
	return commentLine.ReplaceAllString(src, "")
}
