package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateSpecShorthand(t *testing.T) {
	d, err := CandidateSpec{Method: "ScaleWidth", Arguments: []any{400}, Descriptor: "1x"}.CandidateDescriptor()
	require.NoError(t, err)
	assert.Equal(t, VariantChain{{Method: "ScaleWidth", Arguments: []any{400}}}, d.Manipulations)
	assert.Equal(t, "1x", d.Descriptor)

	manipulations := []Manipulation{{Method: "Fill", Arguments: []any{10, 10}}, {Method: "Convert",
		Arguments: []any{"webp"}}}
	d, err = CandidateSpec{Manipulations: manipulations, Descriptor: "2x"}.CandidateDescriptor()
	require.NoError(t, err)
	assert.Equal(t, VariantChain(manipulations), d.Manipulations)

	_, err = CandidateSpec{Descriptor: "2x"}.CandidateDescriptor()
	require.ErrorIs(t, err, ErrInvalidSourceConfig)

	_, err = CandidateSpec{Manipulations: []Manipulation{{}}}.CandidateDescriptor()
	require.ErrorIs(t, err, ErrInvalidSourceConfig)
}

func TestSourceSpecResolveMedia(t *testing.T) {
	tests := []struct {
		name string
		spec SourceSpec
		want string
	}{
		{name: "explicit key", spec: SourceSpec{Key: "(min-width: 800px)", Media: "ignored"}, want: "(min-width: 800px)"},
		{name: "positional key", spec: SourceSpec{Key: "0", Media: "(max-width: 799px)"}, want: "(max-width: 799px)"},
		{name: "no key", spec: SourceSpec{Media: "print"}, want: "print"},
		{name: "positional without media", spec: SourceSpec{Key: "3"}, want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.spec.ResolveMedia())
		})
	}
}

func TestStylesLookup(t *testing.T) {
	styles := Styles{"hero": {Name: "hero"}, "card": {Name: "card"}}

	style, err := styles.Lookup("Hero")
	require.NoError(t, err)
	assert.Equal(t, "hero", style.Name)

	_, err = styles.Lookup("banner")
	require.ErrorIs(t, err, ErrUnknownStyle)

	assert.Equal(t, []string{"card", "hero"}, styles.Names())
}

func TestDeriveBuildsVariantChain(t *testing.T) {
	source := &Image{URL: "/src.jpg", Width: 1000, Height: 800}

	first, err := Derive(source, Manipulation{Method: "ScaleWidth", Arguments: []any{500}}, "", "/a.jpg", "jpg",
		500, 400)
	require.NoError(t, err)
	second, err := Derive(first, Manipulation{Method: MethodExtRewrite, Arguments: []any{"jpg", "webp"}}, "",
		"/a.webp", "webp", 500, 400)
	require.NoError(t, err)

	assert.True(t, source.IsSource())
	assert.False(t, second.IsSource())
	assert.Same(t, source, second.Source())

	parser := NewVariantParser("ScaleWidth", MethodExtRewrite)
	chain, err := parser.Parse(second.Variant)
	require.NoError(t, err)
	assert.Equal(t, VariantChain{
		{Method: "ScaleWidth", Arguments: []any{500}},
		{Method: MethodExtRewrite, Arguments: []any{"jpg", "webp"}},
	}, chain)
}

func TestWithRenderSize(t *testing.T) {
	img := &Image{URL: "/a.jpg", Width: 200, Height: 100}

	forced := img.WithRenderSize(100, 50)

	w, h := forced.DisplaySize()
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h)
	assert.Equal(t, 200, forced.Width)

	w, h = img.DisplaySize()
	assert.Equal(t, 200, w)
	assert.Equal(t, 100, h)
}
