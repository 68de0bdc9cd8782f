package command

import (
	"context"
	"fmt"
	"picturebot/internal/core/domain"
	"picturebot/internal/core/port"
	"time"

	"github.com/rs/zerolog/log"
)

type Picture struct {
	renderer
	textSender  port.TextSender
	imageSender port.ImageSender
	command     string
}

func NewPicture(store port.FileStore, loader port.ImageLoader, assembler port.PictureAssembler,
	styles domain.Styles, textSender port.TextSender, imageSender port.ImageSender, command string) *Picture {
	return &Picture{
		renderer:    renderer{store: store, loader: loader, assembler: assembler, styles: styles},
		textSender:  textSender,
		imageSender: imageSender,
		command:     command,
	}
}

func (p *Picture) GetCommand() string {
	return p.command
}

func (p *Picture) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	l := log.With().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", p.GetCommand()).
		Logger()

	l.Info().Msg("handling request")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	go p.textSender.SendChatAction(ctx, message.ChatID, domain.SendingPhoto)

	if message.ImageURL == "" {
		_ = p.textSender.NotifyAndReturnError(ctx, domain.ErrMissingImage, message)
		return nil
	}

	picture, err := p.assemble(ctx, message.ImageURL, ParseCommandArgs(message.Text))
	if err != nil {
		return p.textSender.NotifyAndReturnError(ctx, err, message)
	}

	l.Debug().Str("style", picture.Style).Int("sources", len(picture.Sources)).Msg("assembled picture")

	_, err = p.textSender.SendMessageReply(ctx, message, FormatPicture(picture))
	if err != nil {
		return p.textSender.NotifyAndReturnError(ctx, fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, err),
			message)
	}

	if picture.Default.Image.IsSource() {
		l.Debug().Msg("default is the unmodified source, skipping upload")
		return nil
	}

	data, err := p.store.Read(picture.Default.Image.Path)
	if err != nil {
		return p.textSender.NotifyAndReturnError(ctx, fmt.Errorf("failed to read rendered image: %w", err), message)
	}

	err = p.imageSender.SendImageFileReply(ctx, message, data)
	if err != nil {
		return p.textSender.NotifyAndReturnError(ctx, fmt.Errorf("failed to send rendered image: %w", err), message)
	}

	return nil
}
