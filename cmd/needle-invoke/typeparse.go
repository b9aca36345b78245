package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danpasecinic/needle-invoke/types"
)

var primitives = func() map[string]types.Primitive {
	out := make(map[string]types.Primitive)
	for p := types.Bool; p <= types.String; p++ {
		out[p.String()] = p
	}
	return out
}()

// ParseType reads the textual form types render with: "void", basic kinds
// such as "int", "[]T" arrays, "Name[A, B]" parameterized classes, "?" and
// "? T" wildcards, and plain class names. An empty string is void.
func ParseType(s string) (types.Type, error) {
	s = strings.TrimSpace(s)

	switch {
	case s == "" || s == types.Void.Name():
		return types.Void, nil
	case s == "?":
		return types.Wildcard(nil), nil
	case strings.HasPrefix(s, "? "):
		bound, err := ParseType(s[2:])
		if err != nil {
			return nil, err
		}
		return types.Wildcard(bound), nil
	case strings.HasPrefix(s, "[]"):
		dims := 0
		for strings.HasPrefix(s, "[]") {
			s = s[2:]
			dims++
		}
		component, err := ParseType(s)
		if err != nil {
			return nil, err
		}
		if component.Kind() == types.KindVoid {
			return nil, fmt.Errorf("array of void in %q", s)
		}
		return types.ArrayOf(component, dims), nil
	}

	if p, ok := primitives[s]; ok {
		return types.Prim(p), nil
	}

	open := strings.IndexByte(s, '[')
	if open < 0 {
		return types.Class(s), nil
	}
	if !strings.HasSuffix(s, "]") || open == 0 {
		return nil, fmt.Errorf("malformed type %q", s)
	}

	parts, err := splitArguments(s[open+1 : len(s)-1])
	if err != nil {
		return nil, fmt.Errorf("malformed type %q: %w", s, err)
	}
	args := make([]types.Type, 0, len(parts))
	for _, part := range parts {
		arg, err := ParseType(part)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return types.Parameterized(s[:open], args...), nil
}

func splitArguments(s string) ([]string, error) {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return nil, errors.New("unbalanced brackets")
			}
		case ',':
			if depth == 0 {
				part := strings.TrimSpace(s[start:i])
				if part == "" {
					return nil, errors.New("empty type argument")
				}
				parts = append(parts, part)
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, errors.New("unbalanced brackets")
	}
	last := strings.TrimSpace(s[start:])
	if last == "" {
		return nil, errors.New("empty type argument")
	}
	return append(parts, last), nil
}
