package apperror

import "errors"

var (
	ErrChannelClosed     = errors.New("channel is closed")
	ErrDisconnected      = errors.New("disconnected from server")
	ErrNotConnected      = errors.New("channel is not connected")
	ErrNamespaceRejected = errors.New("namespace connection rejected")
	ErrMalformedPacket   = errors.New("malformed packet")
	ErrMalformedUpdate   = errors.New("malformed game update")
	ErrAlreadyNavigated  = errors.New("page already navigated away")
)
