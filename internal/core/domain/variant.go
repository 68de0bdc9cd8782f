package domain

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// VariantSeparator joins the encoded manipulations of a variant identifier.
const VariantSeparator = "_"

// variantEncoding is base64 without padding and without the separator in its alphabet,
// so encoded arguments are safe in file names.
var variantEncoding = base64.NewEncoding(
	"ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-.").WithPadding(base64.NoPadding)

// EncodeManipulation returns the variant segment for m: the method name followed by
// its encoded argument list.
func EncodeManipulation(m Manipulation) (string, error) {
	if m.Method == "" || strings.Contains(m.Method, VariantSeparator) {
		return "", fmt.Errorf("%w: invalid method name %q", ErrMalformedVariant, m.Method)
	}

	if len(m.Arguments) == 0 {
		return m.Method, nil
	}

	raw, err := encodeArguments(m.Arguments)
	if err != nil {
		return "", err
	}

	return m.Method + variantEncoding.EncodeToString(raw), nil
}

// EncodeChain returns the variant identifier for a whole chain.
func EncodeChain(chain VariantChain) (string, error) {
	segments := make([]string, 0, len(chain))
	for _, m := range chain {
		s, err := EncodeManipulation(m)
		if err != nil {
			return "", err
		}
		segments = append(segments, s)
	}

	return strings.Join(segments, VariantSeparator), nil
}

func encodeArguments(args []any) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('[')
	for i, arg := range args {
		if i > 0 {
			buf.WriteByte(',')
		}

		switch v := arg.(type) {
		case float64:
			buf.WriteString(formatFloat(v))
		case float32:
			buf.WriteString(formatFloat(float64(v)))
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, string, bool:
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrMalformedVariant, err)
			}
			buf.Write(b)
		default:
			return nil, fmt.Errorf("%w: unsupported argument %v (%T)", ErrMalformedVariant, arg, arg)
		}
	}
	buf.WriteByte(']')

	return buf.Bytes(), nil
}

// formatFloat keeps a fraction so integral floats decode as floats again.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !math.IsInf(f, 0) && !math.IsNaN(f) {
		s += ".0"
	}
	return s
}

// VariantParser decodes variant identifiers into manipulation chains. Only
// methods it knows about can be decoded.
type VariantParser struct {
	methods []string
}

func NewVariantParser(methods ...string) *VariantParser {
	m := make([]string, len(methods))
	copy(m, methods)

	// longest first, "ScaleWidth" must win over "Scale"
	sort.SliceStable(m, func(i, j int) bool {
		return len(m[i]) > len(m[j])
	})

	return &VariantParser{methods: m}
}

// Parse decodes a full variant identifier. An empty identifier yields an empty chain.
func (p *VariantParser) Parse(variant string) (VariantChain, error) {
	if variant == "" {
		return VariantChain{}, nil
	}

	segments := strings.Split(variant, VariantSeparator)
	chain := make(VariantChain, 0, len(segments))
	for _, segment := range segments {
		m, err := p.ParseSegment(segment)
		if err != nil {
			return nil, err
		}
		chain = append(chain, m)
	}

	return chain, nil
}

// Last decodes only the most recent manipulation of a variant identifier.
func (p *VariantParser) Last(variant string) (Manipulation, error) {
	if variant == "" {
		return Manipulation{}, fmt.Errorf("%w: empty variant", ErrMalformedVariant)
	}

	segments := strings.Split(variant, VariantSeparator)
	return p.ParseSegment(segments[len(segments)-1])
}

func (p *VariantParser) ParseSegment(segment string) (Manipulation, error) {
	for _, method := range p.methods {
		if !strings.HasPrefix(segment, method) {
			continue
		}

		encoded := strings.TrimPrefix(segment, method)
		if encoded == "" {
			return Manipulation{Method: method}, nil
		}

		args, err := decodeArguments(encoded)
		if err != nil {
			continue
		}

		return Manipulation{Method: method, Arguments: args}, nil
	}

	return Manipulation{}, fmt.Errorf("%w: cannot decode segment %q", ErrMalformedVariant, segment)
}

func decodeArguments(encoded string) ([]any, error) {
	raw, err := variantEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var values []any
	if err := dec.Decode(&values); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after arguments")
	}

	args := make([]any, 0, len(values))
	for _, v := range values {
		switch t := v.(type) {
		case json.Number:
			n, err := decodeNumber(t)
			if err != nil {
				return nil, err
			}
			args = append(args, n)
		case string, bool:
			args = append(args, t)
		default:
			return nil, fmt.Errorf("unsupported argument %v", v)
		}
	}

	return args, nil
}

func decodeNumber(n json.Number) (any, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		i, err := strconv.Atoi(s)
		if err == nil {
			return i, nil
		}
	}

	return n.Float64()
}
