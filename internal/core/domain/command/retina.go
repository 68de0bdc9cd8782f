package command

import (
	"context"
	"fmt"
	"picturebot/internal/core/domain"
	"picturebot/internal/core/port"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultRetinaFactor = "2x"
	noRetinaVariant     = "no retina variant available"
)

// Retina replies with a higher density rendition of a style's default image.
type Retina struct {
	renderer
	generator   port.RetinaGenerator
	textSender  port.TextSender
	imageSender port.ImageSender
	command     string
}

func NewRetina(store port.FileStore, loader port.ImageLoader, assembler port.PictureAssembler,
	styles domain.Styles, generator port.RetinaGenerator, textSender port.TextSender, imageSender port.ImageSender,
	command string) *Retina {
	return &Retina{
		renderer:    renderer{store: store, loader: loader, assembler: assembler, styles: styles},
		generator:   generator,
		textSender:  textSender,
		imageSender: imageSender,
		command:     command,
	}
}

func (r *Retina) GetCommand() string {
	return r.command
}

func (r *Retina) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	l := log.With().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", r.GetCommand()).
		Logger()

	l.Info().Msg("handling request")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	go r.textSender.SendChatAction(ctx, message.ChatID, domain.SendingPhoto)

	if message.ImageURL == "" {
		_ = r.textSender.NotifyAndReturnError(ctx, domain.ErrMissingImage, message)
		return nil
	}

	styleName, factor, _ := strings.Cut(ParseCommandArgs(message.Text), " ")
	if factor == "" {
		factor = defaultRetinaFactor
	}

	if _, err := domain.ParseFactor(factor); err != nil {
		_ = r.textSender.NotifyAndReturnError(ctx, fmt.Errorf("usage: %s <style> [factor], e.g. 2x: %w",
			r.GetCommand(), err), message)
		return nil
	}

	picture, err := r.assemble(ctx, message.ImageURL, styleName)
	if err != nil {
		return r.textSender.NotifyAndReturnError(ctx, err, message)
	}

	retina, ok, err := r.generator.Retina(ctx, picture.Default.Image, factor)
	if err != nil {
		return r.textSender.NotifyAndReturnError(ctx, fmt.Errorf("failed to generate retina variant: %w", err),
			message)
	}

	if !ok {
		l.Info().Str("factor", factor).Msg("retina variant would upscale")
		_, err = r.textSender.SendMessageReply(ctx, message, noRetinaVariant)
		return err
	}

	data, err := r.store.Read(retina.Path)
	if err != nil {
		return r.textSender.NotifyAndReturnError(ctx, fmt.Errorf("failed to read rendered image: %w", err), message)
	}

	err = r.imageSender.SendImageFileReply(ctx, message, data)
	if err != nil {
		return r.textSender.NotifyAndReturnError(ctx, fmt.Errorf("failed to send retina image: %w", err), message)
	}

	return nil
}
