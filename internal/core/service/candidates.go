package service

import (
	"context"
	"errors"
	"picturebot/internal/core/domain"
	"picturebot/internal/core/port"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"
)

var errNoImage = errors.New("transformer returned no image")

// CandidateBuilder turns candidate descriptors into derived images. Candidates are
// independent of each other and are built concurrently, results keep request order.
type CandidateBuilder struct {
	transformer port.ImageTransformer
	concurrency int
}

// NewCandidateBuilder creates a builder running at most concurrency transforms at
// once. Zero or less uses GOMAXPROCS.
func NewCandidateBuilder(transformer port.ImageTransformer, concurrency int) *CandidateBuilder {
	if concurrency < 0 {
		concurrency = 0
	}
	return &CandidateBuilder{transformer: transformer, concurrency: concurrency}
}

// Build applies every descriptor's manipulations to source. A descriptor whose
// manipulations fail still yields a candidate, with a nil image.
func (b *CandidateBuilder) Build(ctx context.Context, source *domain.Image,
	descriptors []domain.CandidateDescriptor) domain.CandidateSet {
	mapper := iter.Mapper[domain.CandidateDescriptor, domain.Candidate]{MaxGoroutines: b.concurrency}

	return mapper.Map(descriptors, func(d *domain.CandidateDescriptor) domain.Candidate {
		return b.build(ctx, source, *d)
	})
}

func (b *CandidateBuilder) build(ctx context.Context, source *domain.Image,
	d domain.CandidateDescriptor) domain.Candidate {
	candidate := domain.Candidate{
		Manipulations: append(domain.VariantChain(nil), d.Manipulations...),
		Descriptor:    d.Descriptor,
	}

	img := source
	for _, m := range d.Manipulations {
		next, err := b.apply(ctx, img, m)
		if err != nil {
			log.Debug().
				Err(err).
				Str("method", m.Method).
				Str("descriptor", d.Descriptor).
				Msg("candidate manipulation failed, dropping candidate")
			return candidate
		}
		img = next
	}

	candidate.Image = img
	return candidate
}

// Apply runs one more manipulation on every present candidate of set and returns the
// result as a new set. Candidates without an image are passed through.
func (b *CandidateBuilder) Apply(ctx context.Context, set domain.CandidateSet, method string,
	args ...any) domain.CandidateSet {
	m := domain.Manipulation{Method: method, Arguments: args}
	mapper := iter.Mapper[domain.Candidate, domain.Candidate]{MaxGoroutines: b.concurrency}

	return mapper.Map(set, func(c *domain.Candidate) domain.Candidate {
		if !c.Present() {
			return *c
		}

		out := domain.Candidate{
			Manipulations: c.Manipulations.Append(m),
			Descriptor:    c.Descriptor,
		}

		img, err := b.apply(ctx, c.Image, m)
		if err != nil {
			log.Debug().
				Err(err).
				Str("method", method).
				Str("descriptor", c.Descriptor).
				Msg("manipulation failed on candidate")
			return out
		}

		out.Image = img
		return out
	})
}

func (b *CandidateBuilder) apply(ctx context.Context, img *domain.Image,
	m domain.Manipulation) (*domain.Image, error) {
	var (
		out *domain.Image
		err error
	)

	switch m.Method {
	case domain.MethodNoop:
		return img, nil
	case domain.MethodConvert:
		var format string
		format, err = domain.StringArgument(m.Arguments, 0)
		if err != nil {
			return nil, err
		}
		out, err = b.transformer.Convert(ctx, img, format)
	default:
		out, err = b.transformer.Transform(ctx, img, m)
	}

	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errNoImage
	}

	return out, nil
}
