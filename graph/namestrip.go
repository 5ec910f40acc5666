package graph

import "strings"

// stripName reduces a demangled symbol name to its bare identifier by
// dropping everything from its first '(' onward (the parameter list, and
// for methods any trailing const/ref qualifiers). It reports whether it
// actually changed anything, so callers can tell "already bare" apart from
// "stripped".
func stripName(name string) (stripped string, changed bool) {
	if i := strings.IndexByte(name, '('); i >= 0 {
		return name[:i], true
	}
	return name, false
}
