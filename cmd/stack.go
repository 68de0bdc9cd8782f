package cmd

import (
	"context"
	"fmt"
	"picturebot/internal/adapters/config"
	"picturebot/internal/adapters/file"
	"picturebot/internal/adapters/metrics"
	"picturebot/internal/adapters/transform"
	"picturebot/internal/core/domain"
	"picturebot/internal/core/service"
	"strings"

	"github.com/spf13/viper"
)

// pictureStack is the rendering pipeline shared by the bot and the CLI commands.
type pictureStack struct {
	magick    *transform.Magick
	registry  *transform.Registry
	assembler *service.Assembler
	replay    *service.ReplayEngine
	store     *file.Downloader
	styles    domain.Styles
	metrics   *metrics.Metrics
}

func newPictureStack() (*pictureStack, error) {
	dir := viper.GetString("storage.dir")

	magick, err := transform.NewMagick(dir, viper.GetString("storage.base_url"))
	if err != nil {
		return nil, fmt.Errorf("failed initializing magick: %w", err)
	}

	styles, err := config.LoadStyles(viper.GetString("picture.styles_file"))
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	registry := transform.NewRegistry(magick.Convert, magick.Operations()...)
	transformer := m.Instrument(registry)
	builder := service.NewCandidateBuilder(transformer, viper.GetInt("picture.concurrency"))

	return &pictureStack{
		magick:    magick,
		registry:  registry,
		assembler: service.NewAssembler(builder, service.FailureLogger{}, m),
		replay:    service.NewReplayEngine(transformer),
		store:     file.NewDownloader(dir),
		styles:    styles,
		metrics:   m,
	}, nil
}

// source opens a local path or downloads an http(s) URL first.
func (s *pictureStack) source(ctx context.Context, location string) (*domain.Image, error) {
	path := location
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		var err error
		path, err = s.store.Download(ctx, location)
		if err != nil {
			return nil, err
		}
	}

	return s.magick.Open(ctx, path)
}

func (s *pictureStack) assemble(ctx context.Context, location, styleName string) (*domain.PictureDescriptor, error) {
	style, err := s.styles.Lookup(styleName)
	if err != nil {
		return nil, fmt.Errorf("%w, configured: %s", err, strings.Join(s.styles.Names(), ", "))
	}

	source, err := s.source(ctx, location)
	if err != nil {
		return nil, err
	}

	return s.assembler.Assemble(ctx, source, style)
}
