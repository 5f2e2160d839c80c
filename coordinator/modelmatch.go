package coordinator

import (
	"regexp"
	"strings"
	"sync"
)

var globCache sync.Map // pattern string -> *regexp.Regexp

// modelMatches reports whether the active model name `have` satisfies the
// requested pattern `want`, under three supported forms:
//
//   - exact: have == want
//   - prefix: want ends in "*" and have starts with the part before it
//   - glob: want contains any of "*?[" and is compiled to a regular
//     expression with every non-glob metacharacter escaped, then "*"/"?"
//     translated to their regex equivalents
func modelMatches(have, want string) bool {
	if have == want {
		return true
	}
	if strings.HasSuffix(want, "*") && !strings.ContainsAny(want[:len(want)-1], "*?[") {
		return strings.HasPrefix(have, want[:len(want)-1])
	}
	if strings.ContainsAny(want, "*?[") {
		re := compileGlob(want)
		return re.MatchString(have)
	}
	return false
}

func compileGlob(pattern string) *regexp.Regexp {
	if cached, ok := globCache.Load(pattern); ok {
		return cached.(*regexp.Regexp)
	}

	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")

	re := regexp.MustCompile(b.String())
	globCache.Store(pattern, re)
	return re
}
