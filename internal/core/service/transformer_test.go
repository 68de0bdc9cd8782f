package service

import (
	"context"
	"fmt"
	"picturebot/internal/core/domain"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeTransformer derives images without touching pixels. Resize sets the exact
// size, ScaleWidth keeps the aspect ratio and Quality keeps the size.
type fakeTransformer struct {
	mu       sync.Mutex
	calls    []domain.Manipulation
	maxWidth int
}

func (f *fakeTransformer) record(m domain.Manipulation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, m)
}

func (f *fakeTransformer) Calls() []domain.Manipulation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Manipulation(nil), f.calls...)
}

func (f *fakeTransformer) Transform(_ context.Context, img *domain.Image,
	m domain.Manipulation) (*domain.Image, error) {
	f.record(m)

	var width, height int
	switch m.Method {
	case "Resize":
		w, err := domain.IntArgument(m.Arguments, 0)
		if err != nil {
			return nil, err
		}
		h, err := domain.IntArgument(m.Arguments, 1)
		if err != nil {
			return nil, err
		}
		width, height = w, h
	case "ScaleWidth":
		w, err := domain.IntArgument(m.Arguments, 0)
		if err != nil {
			return nil, err
		}
		width, height = w, img.Height*w/img.Width
	case "Quality":
		width, height = img.Width, img.Height
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownMethod, m.Method)
	}

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", domain.ErrInvalidArguments, width, height)
	}
	if f.maxWidth > 0 && width > f.maxWidth {
		return nil, fmt.Errorf("too wide: %d", width)
	}

	return f.derive(img, m, img.Format, width, height)
}

func (f *fakeTransformer) Convert(_ context.Context, img *domain.Image, format string) (*domain.Image, error) {
	m := domain.Manipulation{Method: domain.MethodExtRewrite, Arguments: []any{img.Format, format}}
	f.record(m)
	return f.derive(img, m, format, img.Width, img.Height)
}

func (f *fakeTransformer) derive(img *domain.Image, m domain.Manipulation, format string, width,
	height int) (*domain.Image, error) {
	derived, err := domain.Derive(img, m, "", "", format, width, height)
	if err != nil {
		return nil, err
	}
	derived.URL = fmt.Sprintf("/%s.%s", derived.Variant, format)
	return derived, nil
}

func (f *fakeTransformer) Methods() []string {
	return []string{"Resize", "ScaleWidth", "Quality", domain.MethodExtRewrite}
}

// roleTransformer publishes that Quality has no size arguments.
type roleTransformer struct {
	*fakeTransformer
}

func (r roleTransformer) SizeArguments(method string) ([]int, bool) {
	if method == "Quality" {
		return []int{}, true
	}
	return nil, false
}

func newSource(width, height int) *domain.Image {
	return &domain.Image{URL: "/source.jpg", Format: "jpg", Width: width, Height: height}
}

// mustDerive prepares an input image with a transformer of its own, so the
// transformer under test only records replayed calls.
func mustDerive(t *testing.T, img *domain.Image, method string, args ...any) *domain.Image {
	t.Helper()
	out, err := (&fakeTransformer{}).Transform(t.Context(), img, domain.Manipulation{Method: method, Arguments: args})
	require.NoError(t, err)
	return out
}

func mustConvert(t *testing.T, img *domain.Image, format string) *domain.Image {
	t.Helper()
	out, err := (&fakeTransformer{}).Convert(t.Context(), img, format)
	require.NoError(t, err)
	return out
}
