package handler

import (
	"encoding/base64"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smartsched/scheduler-server-go/internal/config"
	apperrors "github.com/smartsched/scheduler-server-go/internal/errors"
	"github.com/smartsched/scheduler-server-go/internal/httputil"
	"github.com/smartsched/scheduler-server-go/internal/service"
	"github.com/smartsched/scheduler-server-go/internal/speech"
)

type VoiceHandler struct {
	scheduler   *service.SchedulerService
	transcriber speech.Transcriber
	synthesizer speech.Synthesizer
	sessionTTL  time.Duration
}

func NewVoiceHandler(
	scheduler *service.SchedulerService,
	transcriber speech.Transcriber,
	synthesizer speech.Synthesizer,
	sessionTTL time.Duration,
) *VoiceHandler {
	return &VoiceHandler{
		scheduler:   scheduler,
		transcriber: transcriber,
		synthesizer: synthesizer,
		sessionTTL:  sessionTTL,
	}
}

// POST /voice-chat
// Multipart audio in; transcript, text reply, and base64 MP3 reply out.
// Synthesis is best effort: a text reply with no audio is still a success.
func (h *VoiceHandler) VoiceChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxAudioBytes)

	file, header, err := r.FormFile("audio")
	if err != nil {
		httputil.WriteError(w, apperrors.MissingRequired("audio"))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "audio upload too large"})
		return
	}
	if len(audio) == 0 {
		httputil.WriteError(w, apperrors.ValidationError("audio file is empty"))
		return
	}

	transcript, err := h.transcriber.Transcribe(r.Context(), audio, header.Filename)
	if err != nil {
		log.Error().Err(err).Msg("transcription failed")
		httputil.WriteError(w, err)
		return
	}
	if transcript == "" {
		httputil.WriteError(w, apperrors.InvalidInput("audio", "could not understand the audio"))
		return
	}

	sessionID := ensureSession(w, r, h.sessionTTL)
	reply := h.scheduler.ProcessMessage(r.Context(), sessionID, transcript)

	audioData := ""
	if h.synthesizer.Enabled() {
		spoken, err := h.synthesizer.Synthesize(r.Context(), reply)
		if err != nil {
			log.Warn().Err(err).Str("sessionId", sessionID).Msg("speech synthesis failed, returning text only")
		} else {
			audioData = base64.StdEncoding.EncodeToString(spoken)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transcript": transcript,
		"response":   reply,
		"audioData":  audioData,
		"success":    true,
	})
}
