package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

// Scaled returns a copy of m with its integer arguments multiplied by factor and
// truncated. When sizeArgs is nil every integer argument is treated as a size,
// otherwise only the listed positions are scaled.
func (m Manipulation) Scaled(factor float64, sizeArgs []int) Manipulation {
	args := make([]any, len(m.Arguments))
	copy(args, m.Arguments)

	scale := func(i int) {
		if v, ok := args[i].(int); ok {
			args[i] = int(float64(v) * factor)
		}
	}

	if sizeArgs == nil {
		for i := range args {
			scale(i)
		}
	} else {
		for _, i := range sizeArgs {
			if i >= 0 && i < len(args) {
				scale(i)
			}
		}
	}

	return Manipulation{Method: m.Method, Arguments: args}
}

func (m Manipulation) String() string {
	return fmt.Sprintf("%s%v", m.Method, m.Arguments)
}

// Append returns a new chain with m added, leaving c untouched.
func (c VariantChain) Append(m Manipulation) VariantChain {
	chain := make(VariantChain, len(c), len(c)+1)
	copy(chain, c)
	return append(chain, m)
}

var factorPattern = regexp.MustCompile(`^(\d+(\.\d+)?)x$`)

// ParseFactor parses a pixel density string such as "2x" or "1.5x".
func ParseFactor(s string) (float64, error) {
	matches := factorPattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFactor, s)
	}

	factor, err := strconv.ParseFloat(matches[1], 64)
	if err != nil || factor <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFactor, s)
	}

	return factor, nil
}

// IntArgument reads argument i as an integer. Whole floats are accepted since
// argument lists decoded from config files do not distinguish them.
func IntArgument(args []any, i int) (int, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("%w: missing argument %d", ErrInvalidArguments, i)
	}

	switch v := args[i].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v == float64(int(v)) {
			return int(v), nil
		}
	}

	return 0, fmt.Errorf("%w: argument %d is not an integer: %v", ErrInvalidArguments, i, args[i])
}

func StringArgument(args []any, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("%w: missing argument %d", ErrInvalidArguments, i)
	}

	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("%w: argument %d is not a string: %v", ErrInvalidArguments, i, args[i])
	}

	return s, nil
}
