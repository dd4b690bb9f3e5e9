package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/smartsched/scheduler-server-go/internal/config"
	apperrors "github.com/smartsched/scheduler-server-go/internal/errors"
)

// WhisperClient talks to a whisper.cpp-compatible HTTP server.
type WhisperClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewWhisperClient(baseURL string) *WhisperClient {
	return &WhisperClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: config.TranscribeTimeout},
	}
}

type whisperResponse struct {
	Text string `json:"text"`
}

// Transcribe posts the audio as a multipart upload and returns the
// recognized text, trimmed. Empty text is returned as-is; the caller decides
// what an empty transcript means.
func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", apperrors.Transcription(err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", apperrors.Transcription(err)
	}
	if err := writer.WriteField("response_format", "json"); err != nil {
		return "", apperrors.Transcription(err)
	}
	if err := writer.Close(); err != nil {
		return "", apperrors.Transcription(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/inference", &body)
	if err != nil {
		return "", apperrors.Transcription(err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Transcription(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", apperrors.Transcription(
			fmt.Errorf("transcription server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))))
	}

	var parsed whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", apperrors.Transcription(err)
	}
	return strings.TrimSpace(parsed.Text), nil
}

// Warmup checks the server health endpoint. Failures are expected during
// startup while the model loads, so the caller treats them as advisory.
func (c *WhisperClient) Warmup(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("transcription server health returned %d", resp.StatusCode)
	}
	log.Info().Str("baseUrl", c.baseURL).Msg("transcription server ready")
	return nil
}
