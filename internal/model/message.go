package model

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
)

type BodyKind string

const (
	BodyText  BodyKind = "text"
	BodyImage BodyKind = "image"
)

const (
	imageDataURLPrefix = "data:image"
	// Ticket bodies longer than this are assumed to be inline images.
	ticketImageLengthThreshold = 1000
)

var ErrNotImage = errors.New("model: body is not an image payload")

// ClassifyChatBody is the chat room heuristic: a data-URL image prefix, or a
// base64 payload that decodes to a bitmap.
func ClassifyChatBody(body string) BodyKind {
	if strings.HasPrefix(body, imageDataURLPrefix) {
		return BodyImage
	}
	if _, _, err := decodeBitmap(body); err == nil {
		return BodyImage
	}
	return BodyText
}

// ClassifyTicketBody is the support ticket heuristic: a data-URL image prefix,
// or any body longer than 1000 characters. It differs from ClassifyChatBody
// on purpose; the two call sites are kept apart.
func ClassifyTicketBody(body string) BodyKind {
	if strings.HasPrefix(body, imageDataURLPrefix) || len(body) > ticketImageLengthThreshold {
		return BodyImage
	}
	return BodyText
}

// DecodeImagePayload returns the bitmap bytes and format ("png", "jpeg",
// "gif") of an image body, with or without a data-URL header.
func DecodeImagePayload(body string) ([]byte, string, error) {
	return decodeBitmap(body)
}

// EncodeImageDataURL builds an outgoing image body.
func EncodeImageDataURL(format string, data []byte) string {
	return "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// SniffImage reports the bitmap format of raw image bytes.
func SniffImage(raw []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", ErrNotImage
	}
	return format, nil
}

func decodeBitmap(body string) ([]byte, string, error) {
	payload := body
	if strings.HasPrefix(payload, imageDataURLPrefix) {
		idx := strings.IndexByte(payload, ',')
		if idx < 0 {
			return nil, "", ErrNotImage
		}
		payload = payload[idx+1:]
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, "", ErrNotImage
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", ErrNotImage
	}
	format, err := SniffImage(raw)
	if err != nil {
		return nil, "", err
	}
	return raw, format, nil
}
