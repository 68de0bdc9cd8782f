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

type Styles struct {
	styles     domain.Styles
	textSender port.TextSender
	command    string
}

func NewStyles(styles domain.Styles, sender port.TextSender, command string) *Styles {
	return &Styles{styles: styles, textSender: sender, command: command}
}

func (s *Styles) GetCommand() string {
	return s.command
}

func (s *Styles) Respond(ctx context.Context, _ time.Duration, message *domain.Message) error {
	log.Info().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", s.GetCommand()).
		Msg("handling request")

	names := s.styles.Names()
	if len(names) == 0 {
		_, err := s.textSender.SendMessageReply(ctx, message, "no styles configured")
		return err
	}

	var b strings.Builder
	for _, name := range names {
		style := s.styles[name]
		fmt.Fprintf(&b, "%s: %d default, %d sources\n", name, len(style.Default), len(style.Sources))
	}

	_, err := s.textSender.SendMessageReply(ctx, message, strings.TrimSuffix(b.String(), "\n"))
	return err
}
