package text

import (
	"context"
	"regexp"
	"regexp/syntax"
	"strings"

	"github.com/corelens/rca-engine/internal/apierrors"
	"github.com/corelens/rca-engine/internal/rcaconst"
)

// probeString is the pathological input a candidate pattern is tested
// against before it is accepted: long enough to blow up any
// exponential-backtracking engine, harmless against Go's linear-time
// RE2 engine.
const probeString = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa!"

// ValidatePattern rejects custom regex patterns with an obvious
// catastrophic-backtracking shape (nested unbounded quantifiers, e.g.
// `(a+)+`), then compiles the pattern and runs it against a
// pathological probe string under a timeout before accepting it.
//
// Returns the compiled pattern on success.
func ValidatePattern(pattern string) (*regexp.Regexp, error) {
	parsed, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, apierrors.New(apierrors.KindInvalidFormat, "text: invalid regex pattern: %v", err)
	}
	if hasNestedQuantifier(parsed) {
		return nil, apierrors.New(apierrors.KindUnsafeRegex, "text: pattern %q contains nested quantifiers", pattern)
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, apierrors.New(apierrors.KindInvalidFormat, "text: invalid regex pattern: %v", err)
	}

	if err := boundedMatchTest(re); err != nil {
		return nil, err
	}
	return re, nil
}

// hasNestedQuantifier reports whether re contains an unbounded
// quantifier (`*`, `+`, or `{n,}`) whose operand itself contains
// another unbounded quantifier - the shape that causes catastrophic
// backtracking in backtracking regex engines.
func hasNestedQuantifier(re *syntax.Regexp) bool {
	if isUnbounded(re) {
		for _, sub := range re.Sub {
			if containsUnbounded(sub) {
				return true
			}
		}
	}
	for _, sub := range re.Sub {
		if hasNestedQuantifier(sub) {
			return true
		}
	}
	return false
}

func containsUnbounded(re *syntax.Regexp) bool {
	if isUnbounded(re) {
		return true
	}
	for _, sub := range re.Sub {
		if containsUnbounded(sub) {
			return true
		}
	}
	return false
}

func isUnbounded(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpStar, syntax.OpPlus:
		return true
	case syntax.OpRepeat:
		return re.Max == -1
	}
	return false
}

// boundedMatchTest runs re against the probe string on a goroutine,
// bailing out with KindUnsafeRegex if it doesn't return within
// rcaconst.RegexValidationTimeout. Go's RE2-based regexp engine is
// guaranteed linear time, so this is belt-and-suspenders against the
// structural check above rather than the primary defense.
func boundedMatchTest(re *regexp.Regexp) error {
	ctx, cancel := context.WithTimeout(context.Background(), rcaconst.RegexValidationTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		re.MatchString(probeString)
		re.MatchString(strings.Repeat("a", 64))
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return apierrors.New(apierrors.KindUnsafeRegex, "text: pattern exceeded %s match timeout", rcaconst.RegexValidationTimeout)
	}
}
