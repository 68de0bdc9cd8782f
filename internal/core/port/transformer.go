package port

import (
	"context"
	"picturebot/internal/core/domain"
)

type ImageTransformer interface {
	// Transform applies a single manipulation to img and returns the derived image.
	Transform(ctx context.Context, img *domain.Image, m domain.Manipulation) (*domain.Image, error)
	// Convert re-encodes img in the target format, e.g. "webp".
	Convert(ctx context.Context, img *domain.Image, format string) (*domain.Image, error)
	// Methods lists the manipulation names Transform understands.
	Methods() []string
}

// ArgumentRoles is implemented by transformers that know which arguments of a
// method are sizes. Only those are scaled when a manipulation is replayed.
type ArgumentRoles interface {
	SizeArguments(method string) ([]int, bool)
}

type ImageLoader interface {
	// Open identifies a local image file and returns it as a source image.
	Open(ctx context.Context, path string) (*domain.Image, error)
}
