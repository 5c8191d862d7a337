package script

import (
	"regexp"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$.-][A-Za-z0-9_$.-]*`)

// SplitArgs separates command line script arguments into positional and
// keyword arguments. An argument is a kwarg when it starts like an
// identifier and contains `=`; the key ends at the first `=`. Everything
// else stays positional, so `=gee` and `1=2` pass through untouched.
func SplitArgs(args []string) ([]string, map[string]string) {
	var posargs []string
	kwargs := make(map[string]string)

	for _, val := range args {
		if idx := indexKwarg(val); idx >= 0 {
			kwargs[val[:idx]] = val[idx+1:]
		} else {
			posargs = append(posargs, val)
		}
	}
	return posargs, kwargs
}

func indexKwarg(val string) int {
	if !identifierPattern.MatchString(val) {
		return -1
	}
	return strings.IndexByte(val, '=')
}
