package ocr

import "errors"

// ErrUnreadableImage is returned when the source image cannot be decoded.
var ErrUnreadableImage = errors.New("unreadable image")
