package service

import (
	"context"
	"fmt"
	"picturebot/internal/core/domain"

	"github.com/rs/zerolog/log"
)

// Assembler composes the default image and the media conditioned sources of a style.
type Assembler struct {
	builder   *CandidateBuilder
	observers []domain.RenderObserver
}

func NewAssembler(builder *CandidateBuilder, observers ...domain.RenderObserver) *Assembler {
	return &Assembler{builder: builder, observers: observers}
}

type sourcePlan struct {
	media       string
	descriptors []domain.CandidateDescriptor
}

// Assemble builds the picture descriptor of style for source. The whole style is
// validated before any image is derived, so an invalid style yields no descriptor.
func (a *Assembler) Assemble(ctx context.Context, source *domain.Image,
	style domain.Style) (*domain.PictureDescriptor, error) {
	if len(style.Default) == 0 {
		return nil, fmt.Errorf("%w for style %q", domain.ErrMissingDefaultConfig, style.Name)
	}

	defaults, err := candidateDescriptors(style.Default)
	if err != nil {
		return nil, fmt.Errorf("default of style %q: %w", style.Name, err)
	}

	plans := make([]sourcePlan, 0, len(style.Sources))
	for i, s := range style.Sources {
		if len(s.Candidates) == 0 {
			return nil, fmt.Errorf("%w: source %d of style %q has no candidates", domain.ErrInvalidSourceConfig, i,
				style.Name)
		}

		descriptors, err := candidateDescriptors(s.Candidates)
		if err != nil {
			return nil, fmt.Errorf("source %d of style %q: %w", i, style.Name, err)
		}

		plans = append(plans, sourcePlan{media: s.ResolveMedia(), descriptors: descriptors})
	}

	l := log.With().Str("style", style.Name).Logger()
	l.Debug().Int("sources", len(plans)).Msg("assembling picture")

	picture := &domain.PictureDescriptor{
		Style:   style.Name,
		Default: a.img(source, a.builder.Build(ctx, source, defaults)),
		Sources: make([]domain.SourceGroup, 0, len(plans)),
	}

	for _, p := range plans {
		picture.Sources = append(picture.Sources, a.group(p.media, a.builder.Build(ctx, source, p.descriptors)))
	}

	return picture, nil
}

// Broadcast applies one manipulation to every candidate of a picture, e.g. a
// conversion to webp, and returns the result as a new descriptor.
func (a *Assembler) Broadcast(ctx context.Context, picture *domain.PictureDescriptor, method string,
	args ...any) *domain.PictureDescriptor {
	out := &domain.PictureDescriptor{
		Style:   picture.Style,
		Sources: make([]domain.SourceGroup, 0, len(picture.Sources)),
	}

	fallback := picture.Default.Image
	if fallback != nil {
		fallback = fallback.Source()
	}
	out.Default = a.img(fallback, a.builder.Apply(ctx, picture.Default.Candidates, method, args...))

	for _, g := range picture.Sources {
		out.Sources = append(out.Sources, a.group(g.Media, a.builder.Apply(ctx, g.Candidates, method, args...)))
	}

	return out
}

func (a *Assembler) img(source *domain.Image, set domain.CandidateSet) domain.Img {
	img, ok := set.First()
	if !ok {
		log.Warn().Int("candidates", len(set)).Msg("no default candidate could be built, using source image")
		img = source
	}

	return domain.Img{Image: img, Candidates: set, Srcset: set.Render(a.observers...)}
}

func (a *Assembler) group(media string, set domain.CandidateSet) domain.SourceGroup {
	return domain.SourceGroup{Media: media, Candidates: set, Srcset: set.Render(a.observers...)}
}

func candidateDescriptors(specs []domain.CandidateSpec) ([]domain.CandidateDescriptor, error) {
	descriptors := make([]domain.CandidateDescriptor, 0, len(specs))
	for _, spec := range specs {
		d, err := spec.CandidateDescriptor()
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}
