package service

import (
	"fmt"
	"picturebot/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	before int
	after  int
}

func (c *countingObserver) BeforeRender(_ domain.CandidateSet) {
	c.before++
}

func (c *countingObserver) AfterRender(entries []string) []string {
	c.after++
	return entries
}

func scaleWidth(w int, descriptor string) domain.CandidateSpec {
	return domain.CandidateSpec{Method: "ScaleWidth", Arguments: []any{w}, Descriptor: descriptor}
}

func heroStyle() domain.Style {
	return domain.Style{
		Name:    "hero",
		Default: []domain.CandidateSpec{scaleWidth(200, "1x"), scaleWidth(400, "2x")},
		Sources: []domain.SourceSpec{
			{
				Key:        "(min-width: 800px)",
				Candidates: []domain.CandidateSpec{scaleWidth(800, "1x"), scaleWidth(-5, "2x")},
			},
			{
				Key:   "1",
				Media: "(max-width: 799px)",
				Candidates: []domain.CandidateSpec{{
					Manipulations: []domain.Manipulation{
						{Method: "ScaleWidth", Arguments: []any{300}},
						{Method: domain.MethodConvert, Arguments: []any{"webp"}},
					},
					Descriptor: "300w",
				}},
			},
		},
	}
}

func TestAssemble(t *testing.T) {
	observer := &countingObserver{}
	src := newSource(1000, 500)

	picture, err := NewAssembler(NewCandidateBuilder(&fakeTransformer{}, 4), observer).
		Assemble(t.Context(), src, heroStyle())

	require.NoError(t, err)
	require.NotNil(t, picture)
	assert.Equal(t, "hero", picture.Style)

	def := picture.Default
	require.NotNil(t, def.Image)
	assert.Equal(t, 200, def.Image.Width)
	assert.Equal(t, fmt.Sprintf("%s 1x, %s 2x", def.Candidates[0].Image.URL, def.Candidates[1].Image.URL), def.Srcset)

	require.Len(t, picture.Sources, 2)

	wide := picture.Sources[0]
	assert.Equal(t, "(min-width: 800px)", wide.Media)
	require.Len(t, wide.Candidates, 2)
	assert.Nil(t, wide.Candidates[1].Image)
	assert.Equal(t, wide.Candidates[0].Image.URL+" 1x", wide.Srcset)

	narrow := picture.Sources[1]
	assert.Equal(t, "(max-width: 799px)", narrow.Media)
	require.Len(t, narrow.Candidates, 1)
	assert.Equal(t, "webp", narrow.Candidates[0].Image.Format)
	assert.Equal(t, narrow.Candidates[0].Image.URL+" 300w", narrow.Srcset)

	assert.Equal(t, 3, observer.before)
	assert.Equal(t, 3, observer.after)
}

func TestAssembleMissingDefault(t *testing.T) {
	ft := &fakeTransformer{}
	style := heroStyle()
	style.Default = nil

	picture, err := NewAssembler(NewCandidateBuilder(ft, 1)).Assemble(t.Context(), newSource(100, 100), style)

	require.ErrorIs(t, err, domain.ErrMissingDefaultConfig)
	assert.Nil(t, picture)
	assert.Empty(t, ft.Calls())
}

func TestAssembleInvalidSource(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *domain.Style)
	}{
		{
			name: "source without candidates",
			mutate: func(s *domain.Style) {
				s.Sources[1].Candidates = nil
			},
		},
		{
			name: "candidate without method",
			mutate: func(s *domain.Style) {
				s.Sources[0].Candidates = append(s.Sources[0].Candidates, domain.CandidateSpec{Descriptor: "3x"})
			},
		},
		{
			name: "default candidate without method",
			mutate: func(s *domain.Style) {
				s.Default = []domain.CandidateSpec{{Descriptor: "1x"}}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ft := &fakeTransformer{}
			style := heroStyle()
			tc.mutate(&style)

			picture, err := NewAssembler(NewCandidateBuilder(ft, 1)).Assemble(t.Context(), newSource(100, 100), style)

			require.ErrorIs(t, err, domain.ErrInvalidSourceConfig)
			assert.Nil(t, picture)
			assert.Empty(t, ft.Calls())
		})
	}
}

func TestAssembleDefaultFallsBackToSource(t *testing.T) {
	src := newSource(100, 100)
	style := domain.Style{Name: "broken", Default: []domain.CandidateSpec{scaleWidth(0, "1x")}}

	picture, err := NewAssembler(NewCandidateBuilder(&fakeTransformer{}, 1)).Assemble(t.Context(), src, style)

	require.NoError(t, err)
	assert.Same(t, src, picture.Default.Image)
	assert.Empty(t, picture.Default.Srcset)
	assert.Empty(t, picture.Sources)
}

func TestBroadcastPicture(t *testing.T) {
	ft := &fakeTransformer{}
	assembler := NewAssembler(NewCandidateBuilder(ft, 2))

	picture, err := assembler.Assemble(t.Context(), newSource(1000, 500), heroStyle())
	require.NoError(t, err)

	converted := assembler.Broadcast(t.Context(), picture, domain.MethodConvert, "avif")

	assert.Equal(t, "avif", converted.Default.Image.Format)
	for _, c := range converted.Default.Candidates {
		assert.Equal(t, "avif", c.Image.Format)
	}

	require.Len(t, converted.Sources, 2)
	assert.Equal(t, picture.Sources[0].Media, converted.Sources[0].Media)
	assert.Nil(t, converted.Sources[0].Candidates[1].Image)
	assert.Equal(t, "avif", converted.Sources[1].Candidates[0].Image.Format)
	assert.NotEqual(t, picture.Sources[1].Srcset, converted.Sources[1].Srcset)

	// the assembled picture still points at the unconverted images
	assert.Equal(t, "jpg", picture.Default.Image.Format)
}
