// Package ocr extracts text from screen captures. The engine is treated
// as a black box behind the Recognizer interface; callers own all
// validation of what comes back.
package ocr

import "image"

// Recognizer turns an image into text. Implementations never fail on
// unreadable content; they return an empty or garbage string and leave
// interpretation to the caller.
type Recognizer interface {
	// Text recognizes a general single line of text.
	Text(img image.Image) (string, error)

	// Digits recognizes a single line expected to contain only digits.
	Digits(img image.Image) (string, error)

	// Close releases engine resources.
	Close() error
}

// NoOp is a Recognizer that always returns empty text. Used when OCR is
// disabled or unavailable; the reader's sanity checks treat every pass
// as failed and keep previous values.
type NoOp struct{}

func (NoOp) Text(image.Image) (string, error)   { return "", nil }
func (NoOp) Digits(image.Image) (string, error) { return "", nil }
func (NoOp) Close() error                       { return nil }
