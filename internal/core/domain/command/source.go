package command

import (
	"context"
	"fmt"
	"picturebot/internal/core/domain"
	"picturebot/internal/core/port"
	"strings"
)

// renderer bundles what the picture based commands need to turn a chat photo into variants.
type renderer struct {
	store     port.FileStore
	loader    port.ImageLoader
	assembler port.PictureAssembler
	styles    domain.Styles
}

func (r renderer) source(ctx context.Context, url string) (*domain.Image, error) {
	path, err := r.store.Download(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}

	img, err := r.loader.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	return img, nil
}

func (r renderer) style(name string) (domain.Style, error) {
	if name == "" {
		return domain.Style{}, fmt.Errorf("%w, choose one of: %s", domain.ErrUnknownStyle,
			strings.Join(r.styles.Names(), ", "))
	}
	return r.styles.Lookup(name)
}

func (r renderer) assemble(ctx context.Context, url, styleName string) (*domain.PictureDescriptor, error) {
	style, err := r.style(styleName)
	if err != nil {
		return nil, err
	}

	source, err := r.source(ctx, url)
	if err != nil {
		return nil, err
	}

	picture, err := r.assembler.Assemble(ctx, source, style)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble picture: %w", err)
	}

	return picture, nil
}

// FormatPicture renders a picture descriptor as chat text, one line per source group.
func FormatPicture(picture *domain.PictureDescriptor) string {
	var b strings.Builder

	img := picture.Default.Image
	width, height := img.DisplaySize()
	fmt.Fprintf(&b, "%s: %s (%dx%d)\n", picture.Style, img.URL, width, height)

	if picture.Default.Srcset != "" {
		fmt.Fprintf(&b, "srcset: %s\n", picture.Default.Srcset)
	}

	for _, group := range picture.Sources {
		if group.Srcset == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", group.Media, group.Srcset)
	}

	return strings.TrimSuffix(b.String(), "\n")
}
