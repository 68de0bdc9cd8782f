package port

import (
	"context"
	"picturebot/internal/core/domain"
)

type PictureAssembler interface {
	// Assemble builds the responsive picture descriptor of a style for the source image.
	Assemble(ctx context.Context, source *domain.Image, style domain.Style) (*domain.PictureDescriptor, error)
}

type RetinaGenerator interface {
	// Retina returns a higher density variant of img for a factor like "2x". ok is false when
	// no variant can be produced without upscaling.
	Retina(ctx context.Context, img *domain.Image, factor string) (*domain.Image, bool, error)
}
