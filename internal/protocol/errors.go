package protocol

import "errors"

var (
	// ErrFrameLength is returned when a buffer is not exactly FrameLength bytes.
	ErrFrameLength = errors.New("invalid frame length")

	// ErrDecodeUnsupported is returned by the receive path, which is not implemented.
	ErrDecodeUnsupported = errors.New("decoding received frames is not supported")

	// ErrUnknownMode is returned when parsing an unrecognized mode name.
	ErrUnknownMode = errors.New("unknown mode")

	// ErrUnknownFan is returned when parsing an unrecognized fan speed name.
	ErrUnknownFan = errors.New("unknown fan speed")

	// ErrUnknownSwing is returned when parsing an unrecognized swing mode name.
	ErrUnknownSwing = errors.New("unknown swing mode")

	// ErrUnknownModel is returned when parsing an unrecognized model name.
	ErrUnknownModel = errors.New("unknown model")
)
