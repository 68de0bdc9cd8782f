package service

import (
	"context"
	"fmt"
	"math"
	"picturebot/internal/core/domain"
	"picturebot/internal/core/port"

	"github.com/rs/zerolog/log"
)

// ReplayEngine re-executes the manipulations that produced an image with their size
// arguments multiplied by a factor.
type ReplayEngine struct {
	transformer port.ImageTransformer
	parser      *domain.VariantParser
}

func NewReplayEngine(transformer port.ImageTransformer) *ReplayEngine {
	return &ReplayEngine{
		transformer: transformer,
		parser:      domain.NewVariantParser(transformer.Methods()...),
	}
}

// Replay rebuilds img at factor times its size. ok is false when any step would have
// to upscale past the resolution of the image it starts from, or when the transformer
// fails on a step. Errors are reserved for an invalid factor or a malformed variant.
func (e *ReplayEngine) Replay(ctx context.Context, img *domain.Image, factor float64, targetWidth,
	targetHeight int) (*domain.Image, bool, error) {
	if !(factor > 0) || math.IsInf(factor, 1) {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrInvalidFactor, factor)
	}

	return e.replay(ctx, img, factor, targetWidth, targetHeight)
}

func (e *ReplayEngine) replay(ctx context.Context, img *domain.Image, factor float64, targetWidth,
	targetHeight int) (*domain.Image, bool, error) {
	if img.Variant == "" {
		return img, true, nil
	}

	if img.Base == nil {
		return nil, false, fmt.Errorf("%w: variant %q has no base image", domain.ErrMalformedVariant, img.Variant)
	}

	base, ok, err := e.replay(ctx, img.Base, factor, targetWidth, targetHeight)
	if err != nil || !ok {
		return nil, false, err
	}

	l := log.With().
		Str("variant", img.Variant).
		Float64("factor", factor).
		Logger()

	if float64(base.Width) < float64(targetWidth)*factor || float64(base.Height) < float64(targetHeight)*factor {
		l.Debug().
			Int("baseWidth", base.Width).
			Int("baseHeight", base.Height).
			Int("targetWidth", targetWidth).
			Int("targetHeight", targetHeight).
			Msg("base too small, replay would upscale")
		return nil, false, nil
	}

	m, err := e.parser.Last(img.Variant)
	if err != nil {
		return nil, false, err
	}

	var out *domain.Image
	if m.Method == domain.MethodExtRewrite {
		// the target format is the second argument, nothing to scale
		var format string
		format, err = domain.StringArgument(m.Arguments, 1)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %w", domain.ErrMalformedVariant, err)
		}
		out, err = e.transformer.Convert(ctx, base, format)
	} else {
		out, err = e.transformer.Transform(ctx, base, m.Scaled(factor, e.sizeArguments(m.Method)))
	}

	if err != nil || out == nil {
		l.Debug().Err(err).Str("method", m.Method).Msg("replayed manipulation failed")
		return nil, false, nil
	}

	return out, true, nil
}

func (e *ReplayEngine) sizeArguments(method string) []int {
	roles, ok := e.transformer.(port.ArgumentRoles)
	if !ok {
		return nil
	}

	sizeArgs, found := roles.SizeArguments(method)
	if !found {
		return nil
	}

	return sizeArgs
}

// Retina returns a variant of img with factor times the pixel density that still
// renders at the size of img. factor has the form "2x" or "1.5x". An unmodified
// source has nothing to replay and yields no variant.
func (e *ReplayEngine) Retina(ctx context.Context, img *domain.Image, factor string) (*domain.Image, bool, error) {
	f, err := domain.ParseFactor(factor)
	if err != nil {
		return nil, false, err
	}

	width, height := img.Width, img.Height

	retina, ok, err := e.Replay(ctx, img, f, width, height)
	if err != nil {
		return nil, false, err
	}
	if !ok || retina.IsSource() {
		log.Debug().Str("variant", img.Variant).Str("factor", factor).Msg("no retina variant available")
		return nil, false, nil
	}

	return retina.WithRenderSize(width, height), true, nil
}
