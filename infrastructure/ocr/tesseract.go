package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/otiai10/gosseract"
)

// Tesseract recognizes text with a local tesseract engine via gosseract.
// The underlying client is not safe for concurrent use; a mutex
// serializes calls, which matches the one-OCR-call-at-a-time rhythm of a
// session loop.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseract creates a recognizer with English language data.
func NewTesseract() *Tesseract {
	client := gosseract.NewClient()
	client.SetLanguage("eng")
	return &Tesseract{client: client}
}

func (t *Tesseract) Text(img image.Image) (string, error) {
	return t.recognize(img, "", gosseract.PSM_SINGLE_LINE)
}

func (t *Tesseract) Digits(img image.Image) (string, error) {
	return t.recognize(img, "0123456789", gosseract.PSM_SINGLE_LINE)
}

func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}

func (t *Tesseract) recognize(img image.Image, whitelist string, psm gosseract.PageSegMode) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image for ocr: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set ocr image: %w", err)
	}
	t.client.SetWhitelist(whitelist)
	t.client.SetPageSegMode(psm)

	text, err := t.client.Text()
	if err != nil {
		// Engine hiccups are treated like unreadable content.
		return "", nil
	}
	return strings.TrimSpace(text), nil
}
