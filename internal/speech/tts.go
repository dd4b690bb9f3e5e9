package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/smartsched/scheduler-server-go/internal/config"
	apperrors "github.com/smartsched/scheduler-server-go/internal/errors"
)

const elevenLabsBaseURL = "https://api.elevenlabs.io"

// ElevenLabsClient renders text as MP3 audio via the ElevenLabs API.
// A client with an empty API key is valid but disabled.
type ElevenLabsClient struct {
	apiKey     string
	voiceID    string
	baseURL    string
	httpClient *http.Client
}

func NewElevenLabsClient(apiKey, voiceID string) *ElevenLabsClient {
	return &ElevenLabsClient{
		apiKey:     apiKey,
		voiceID:    voiceID,
		baseURL:    elevenLabsBaseURL,
		httpClient: &http.Client{Timeout: config.TTSTimeout},
	}
}

func (c *ElevenLabsClient) Enabled() bool {
	return c.apiKey != ""
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if !c.Enabled() {
		return nil, apperrors.Synthesis(fmt.Errorf("speech synthesis is not configured"))
	}

	payload, err := json.Marshal(ttsRequest{
		Text:    text,
		ModelID: "eleven_monolingual_v1",
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.5,
			Style:           0.0,
			UseSpeakerBoost: true,
		},
	})
	if err != nil {
		return nil, apperrors.Synthesis(err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.Synthesis(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Synthesis(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.Synthesis(
			fmt.Errorf("speech service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Synthesis(err)
	}
	return audio, nil
}
