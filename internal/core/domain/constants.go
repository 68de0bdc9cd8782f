package domain

import "errors"

var (
	ErrSendingReplyFailed   = errors.New("failed to send reply")
	ErrMissingImage         = errors.New("missing image")
	ErrInvalidFactor        = errors.New("invalid factor, must be a float followed by \"x\" (e.g. \"2x\")")
	ErrMalformedVariant     = errors.New("malformed variant")
	ErrMissingDefaultConfig = errors.New("no default config set")
	ErrInvalidSourceConfig  = errors.New("invalid source config")
	ErrUnknownStyle         = errors.New("unknown style")
	ErrUnknownMethod        = errors.New("unknown manipulation method")
	ErrInvalidArguments     = errors.New("invalid manipulation arguments")
)

const (
	// MethodNoop marks a candidate that renders the source image as is.
	MethodNoop = "noop"
	// MethodConvert is the manipulation name used in styles for format conversion.
	MethodConvert = "Convert"
	// MethodExtRewrite is how a format conversion is recorded in a variant identifier.
	// Its arguments are the original and the target extension.
	MethodExtRewrite = "ExtRewrite"
)
