package groq

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads audio to the transcription endpoint with the configured
// model and prompt.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	body, contentType, err := c.transcriptionForm(audio)
	if err != nil {
		return "", fmt.Errorf("transcribe: build form: %w", err)
	}

	var res transcriptionResponse
	err = c.do(ctx, "transcribe", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/audio/transcriptions"), bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	}, &res)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Text), nil
}

func (c *Client) transcriptionForm(audio []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"model", c.cfg.TranscribeModel},
		{"prompt", c.cfg.TranscribePrompt},
		{"response_format", "json"},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	mimeType, ext := sniffAudio(audio)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="audio%s"`, ext))
	h.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

// sniffAudio guesses the MIME type and file extension the API uses to pick a
// decoder. Unknown content is sent as wav.
func sniffAudio(audio []byte) (string, string) {
	switch ct := http.DetectContentType(audio); ct {
	case "audio/mpeg":
		return ct, ".mp3"
	case "audio/wave":
		return "audio/wav", ".wav"
	case "application/ogg", "audio/ogg":
		return "audio/ogg", ".ogg"
	case "audio/aiff":
		return ct, ".aiff"
	case "video/webm", "audio/webm":
		return "audio/webm", ".webm"
	case "video/mp4", "audio/mp4":
		return "audio/m4a", ".m4a"
	default:
		return "audio/wav", ".wav"
	}
}
