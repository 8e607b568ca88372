// Package selector parses and evaluates the chapter-selector
// mini-language: a comma-separated list of terms, each an optional
// leading '!' (exclude) followed by a 1-based index (negative counts
// from the end) or an a:b range where either bound may be omitted.
package selector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidSelector = errors.New("invalid chapter selector")
	ErrOutOfRange      = errors.New("chapter selector out of range")
	ErrEmptySelection  = errors.New("chapter selector selected no chapters")
)

// Select evaluates expr against a list of n chapters and returns the
// selected 0-based indices in original list order. An empty expr
// selects everything; a purely negative expr (only '!' terms) excludes
// from the full list.
func Select(n int, expr string) ([]int, error) {
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	if strings.TrimSpace(expr) == "" {
		return all, nil
	}

	included := map[int]bool{}
	excluded := map[int]bool{}

	for _, term := range strings.Split(expr, ",") {
		term = strings.ReplaceAll(term, " ", "")
		body, negate := strings.CutPrefix(term, "!")

		idxs, err := evalTerm(n, body)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, term)
		}

		set := included
		if negate {
			set = excluded
		}
		for _, i := range idxs {
			set[i] = true
		}
	}

	// Pure-exclusion selectors like "!3" subtract from the full list.
	if len(included) == 0 {
		for _, i := range all {
			included[i] = true
		}
	}

	out := make([]int, 0, len(included))
	for _, i := range all {
		if included[i] && !excluded[i] {
			out = append(out, i)
		}
	}

	return out, nil
}

func evalTerm(n int, body string) ([]int, error) {
	if body == "" || strings.Trim(body, "1234567890-:") != "" {
		return nil, ErrInvalidSelector
	}

	parts := strings.Split(body, ":")
	switch len(parts) {
	case 1:
		i, err := index(n, parts[0])
		if err != nil {
			return nil, err
		}
		return []int{i}, nil
	case 2:
		return span(n, parts[0], parts[1])
	default:
		return nil, ErrInvalidSelector
	}
}

// index maps a single 1-based selector number to a 0-based index.
// Negative numbers count from the end (-1 is the last chapter).
func index(n int, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalidSelector
	}
	if v > 0 {
		v--
	} else if v < 0 {
		v += n
	}
	if v < 0 || v >= n {
		return 0, ErrOutOfRange
	}
	return v, nil
}

// span evaluates an a:b range with slice semantics: bounds clamp
// instead of failing, an omitted bound extends to the matching end, and
// a range denoting zero chapters is an error.
func span(n int, lo, hi string) ([]int, error) {
	start, end := 0, n

	if lo != "" {
		v, err := strconv.Atoi(lo)
		if err != nil {
			return nil, ErrInvalidSelector
		}
		if v > 0 {
			v--
		} else if v < 0 {
			v += n
		}
		start = max(v, 0)
	}

	if hi != "" {
		v, err := strconv.Atoi(hi)
		if err != nil {
			return nil, ErrInvalidSelector
		}
		if v < 0 {
			v += n
		}
		end = min(v, n)
	}

	if start >= end {
		return nil, ErrEmptySelection
	}

	out := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, i)
	}
	return out, nil
}
