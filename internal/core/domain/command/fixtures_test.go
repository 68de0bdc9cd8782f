package command

import (
	"picturebot/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func testStyles() domain.Styles {
	return domain.Styles{
		"hero": {
			Name:    "hero",
			Default: []domain.CandidateSpec{{Method: "ScaleWidth", Arguments: []any{800}}},
			Sources: []domain.SourceSpec{{Key: "(min-width: 1200px)", Candidates: []domain.CandidateSpec{
				{Method: "Fill", Arguments: []any{1200, 600}},
			}}},
		},
		"card": {
			Name:    "card",
			Default: []domain.CandidateSpec{{Method: "Pad", Arguments: []any{300, 300}}},
		},
	}
}

func testSource() *domain.Image {
	return &domain.Image{URL: "https://cdn.example.org/a.jpg", Path: "/data/a.jpg", Format: "jpg",
		Width: 2400, Height: 1600}
}

func testPicture(t *testing.T) *domain.PictureDescriptor {
	t.Helper()

	source := testSource()
	def, err := domain.Derive(source, domain.Manipulation{Method: "ScaleWidth", Arguments: []any{800}},
		"/data/a__hero.jpg", "https://cdn.example.org/a__hero.jpg", "jpg", 800, 533)
	require.NoError(t, err)

	wide, err := domain.Derive(source, domain.Manipulation{Method: "Fill", Arguments: []any{1200, 600}},
		"/data/a__wide.jpg", "https://cdn.example.org/a__wide.jpg", "jpg", 1200, 600)
	require.NoError(t, err)

	return &domain.PictureDescriptor{
		Style: "hero",
		Default: domain.Img{
			Image:      def,
			Candidates: domain.CandidateSet{{Image: def, Descriptor: "1x"}},
			Srcset:     "https://cdn.example.org/a__hero.jpg 1x",
		},
		Sources: []domain.SourceGroup{
			{
				Media:      "(min-width: 1200px)",
				Candidates: domain.CandidateSet{{Image: wide}},
				Srcset:     "https://cdn.example.org/a__wide.jpg",
			},
			{Media: "print"},
		},
	}
}
