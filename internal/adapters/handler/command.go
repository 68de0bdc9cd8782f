package handler

import (
	"context"
	"picturebot/internal/core/domain"
	"picturebot/internal/core/domain/command"
	"picturebot/internal/core/port"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

// FileLinker resolves Telegram file IDs to download URLs.
type FileLinker interface {
	GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error)
	FileDownloadLink(f *models.File) string
}

type Command struct {
	commandRegistry port.CommandRegistry
	guards          []port.Authorizer
	timeout         time.Duration
	files           FileLinker
}

// NewCommand dispatches messages to registered commands. A message is dropped when any guard refuses it.
func NewCommand(commandRegistry port.CommandRegistry, timeout time.Duration, guards ...port.Authorizer) *Command {
	return &Command{commandRegistry: commandRegistry, guards: guards, timeout: timeout}
}

// WithFileLinker overrides the bot used to resolve photo URLs.
func (c *Command) WithFileLinker(files FileLinker) *Command {
	c.files = files
	return c
}

func (c *Command) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		log.Debug().Msg("update without message")
		return
	}

	msg := update.Message
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	log.Debug().Str("message", text).Msg("received command")

	cmd := command.ParseCommand(text)
	commandHandler, err := c.commandRegistry.Get(cmd)
	if err != nil {
		log.Debug().Str("command", cmd).Msg("no handler for command")
		return
	}

	message := &domain.Message{
		ID:       msg.ID,
		ChatID:   msg.Chat.ID,
		Username: getUserNameFromMessage(msg.From),
		Text:     text,
	}

	for _, guard := range c.guards {
		if !guard.IsAuthorized(ctx, message) {
			return
		}
	}

	var files FileLinker = b
	if c.files != nil {
		files = c.files
	}

	go func() {
		// the update context ends with the polling loop, not with this request
		ctx := context.WithoutCancel(ctx)

		message.ImageURL = getOptionalImage(ctx, files, msg)

		err := commandHandler.Respond(ctx, c.timeout, message)
		if err != nil {
			log.Err(err).Str("command", cmd).Msg("failed to respond to command")
		}
	}()
}

// getOptionalImage returns the download URL of the photo attached to msg or to the message it replies to.
func getOptionalImage(ctx context.Context, files FileLinker, msg *models.Message) string {
	fileID := imageFileID(msg)
	if fileID == "" && msg.ReplyToMessage != nil {
		fileID = imageFileID(msg.ReplyToMessage)
	}

	if fileID == "" {
		return ""
	}

	f, err := files.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		log.Error().Err(err).Msg("error getting file from telegram api")
		return ""
	}

	return files.FileDownloadLink(f)
}

// imageFileID prefers uncompressed image documents over photos.
func imageFileID(msg *models.Message) string {
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID
	}

	if len(msg.Photo) > 0 {
		return findLargestImage(msg.Photo)
	}

	return ""
}

func findLargestImage(photos []models.PhotoSize) string {
	largest := photos[0]
	for _, photo := range photos[1:] {
		if photo.Width*photo.Height > largest.Width*largest.Height {
			largest = photo
		}
	}

	return largest.FileID
}

func getUserNameFromMessage(user *models.User) string {
	if user == nil {
		return ""
	}

	if user.Username == "" {
		return user.FirstName
	}

	return "@" + user.Username
}
