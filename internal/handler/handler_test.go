package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartsched/scheduler-server-go/internal/calendar"
	apperrors "github.com/smartsched/scheduler-server-go/internal/errors"
	"github.com/smartsched/scheduler-server-go/internal/model"
	"github.com/smartsched/scheduler-server-go/internal/service"
	"github.com/smartsched/scheduler-server-go/internal/store"
)

type keywordExtractor struct{}

func (keywordExtractor) Extract(_ context.Context, userText, _ string, _ []model.HistoryEntry) (model.Extraction, error) {
	if strings.Contains(userText, "1 hour") {
		minutes := 60
		return model.Extraction{DurationMinutes: &minutes, Intent: model.IntentDuration}, nil
	}
	return model.Extraction{Intent: model.IntentGreeting}, nil
}

type fixedResolver struct{}

func (fixedResolver) ResolveDate(_ context.Context, _ string, now time.Time) (time.Time, bool, error) {
	return now.AddDate(0, 0, 1), true, nil
}

type emptyCalendar struct{}

func (emptyCalendar) ListBusy(context.Context, model.Interval) ([]model.Interval, error) {
	return nil, nil
}

func (emptyCalendar) CreateEvent(context.Context, calendar.CreateEventParams) (string, error) {
	return "evt-1", nil
}

type stubTranscriber struct {
	text string
	err  error
}

func (s stubTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	return s.text, s.err
}

type stubSynthesizer struct {
	audio   []byte
	err     error
	enabled bool
}

func (s stubSynthesizer) Synthesize(context.Context, string) ([]byte, error) {
	return s.audio, s.err
}

func (s stubSynthesizer) Enabled() bool { return s.enabled }

func newTestService() (*service.SchedulerService, *store.SessionStore) {
	sessionStore := store.NewSessionStore()
	svc := service.NewSchedulerService(
		sessionStore,
		keywordExtractor{},
		fixedResolver{},
		service.NewSlotFinder(emptyCalendar{}, time.UTC),
		emptyCalendar{},
		nil,
		time.UTC,
	)
	return svc, sessionStore
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	return nil
}

func TestChatHandler_Chat(t *testing.T) {
	t.Run("returns a reply and mints a session cookie", func(t *testing.T) {
		svc, _ := newTestService()
		h := NewChatHandler(svc, time.Hour)

		body := bytes.NewBufferString(`{"message": "I need a 1 hour meeting"}`)
		req := httptest.NewRequest(http.MethodPost, "/chat", body)
		rec := httptest.NewRecorder()
		h.Chat(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Response string `json:"response"`
			Success  bool   `json:"success"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Response)

		cookie := sessionCookie(t, rec)
		require.NotNil(t, cookie)
		assert.NotEmpty(t, cookie.Value)
		assert.True(t, cookie.HttpOnly)
	})

	t.Run("reuses the session from the cookie", func(t *testing.T) {
		svc, sessionStore := newTestService()
		h := NewChatHandler(svc, time.Hour)

		first := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(`{"message": "hi"}`))
		firstRec := httptest.NewRecorder()
		h.Chat(firstRec, first)
		cookie := sessionCookie(t, firstRec)
		require.NotNil(t, cookie)

		second := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(`{"message": "hi again"}`))
		second.AddCookie(cookie)
		secondRec := httptest.NewRecorder()
		h.Chat(secondRec, second)

		assert.Nil(t, sessionCookie(t, secondRec))
		assert.Equal(t, 1, sessionStore.Len())
	})

	t.Run("rejects malformed and empty messages", func(t *testing.T) {
		svc, _ := newTestService()
		h := NewChatHandler(svc, time.Hour)

		cases := []struct {
			body string
			code string
		}{
			{`not json`, "VALIDATION_ERROR"},
			{`{"message": ""}`, "MISSING_REQUIRED"},
			{`{"message": "   "}`, "MISSING_REQUIRED"},
		}
		for _, tc := range cases {
			req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(tc.body))
			rec := httptest.NewRecorder()
			h.Chat(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, tc.body)
			assert.Contains(t, rec.Body.String(), tc.code, tc.body)
		}
	})
}

func TestChatHandler_Reset(t *testing.T) {
	svc, sessionStore := newTestService()
	h := NewChatHandler(svc, time.Hour)

	chatReq := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(`{"message": "hi"}`))
	chatRec := httptest.NewRecorder()
	h.Chat(chatRec, chatReq)
	cookie := sessionCookie(t, chatRec)
	require.NotNil(t, cookie)
	require.Equal(t, 1, sessionStore.Len())

	resetReq := httptest.NewRequest(http.MethodPost, "/reset", nil)
	resetReq.AddCookie(cookie)
	resetRec := httptest.NewRecorder()
	h.Reset(resetRec, resetReq)

	assert.Equal(t, http.StatusOK, resetRec.Code)
	assert.Equal(t, 0, sessionStore.Len())

	// Reset without a cookie is a harmless no-op.
	bareRec := httptest.NewRecorder()
	h.Reset(bareRec, httptest.NewRequest(http.MethodPost, "/reset", nil))
	assert.Equal(t, http.StatusOK, bareRec.Code)
}

func audioRequest(t *testing.T, payload []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio", "recording.wav")
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/voice-chat", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestVoiceHandler_VoiceChat(t *testing.T) {
	t.Run("transcribes, replies, and attaches base64 audio", func(t *testing.T) {
		svc, _ := newTestService()
		h := NewVoiceHandler(
			svc,
			stubTranscriber{text: "I need a 1 hour meeting"},
			stubSynthesizer{audio: []byte("mp3"), enabled: true},
			time.Hour,
		)

		rec := httptest.NewRecorder()
		h.VoiceChat(rec, audioRequest(t, []byte("wav-bytes")))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Transcript string `json:"transcript"`
			Response   string `json:"response"`
			AudioData  string `json:"audioData"`
			Success    bool   `json:"success"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "I need a 1 hour meeting", resp.Transcript)
		assert.NotEmpty(t, resp.Response)
		assert.Equal(t, "bXAz", resp.AudioData)
	})

	t.Run("synthesis failure still returns the text reply", func(t *testing.T) {
		svc, _ := newTestService()
		h := NewVoiceHandler(
			svc,
			stubTranscriber{text: "hello"},
			stubSynthesizer{err: errors.New("voice service down"), enabled: true},
			time.Hour,
		)

		rec := httptest.NewRecorder()
		h.VoiceChat(rec, audioRequest(t, []byte("wav-bytes")))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"audioData":""`)
	})

	t.Run("disabled synthesizer is skipped entirely", func(t *testing.T) {
		svc, _ := newTestService()
		h := NewVoiceHandler(svc, stubTranscriber{text: "hello"}, stubSynthesizer{}, time.Hour)

		rec := httptest.NewRecorder()
		h.VoiceChat(rec, audioRequest(t, []byte("wav-bytes")))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"audioData":""`)
	})

	t.Run("missing audio field is a bad request", func(t *testing.T) {
		svc, _ := newTestService()
		h := NewVoiceHandler(svc, stubTranscriber{}, stubSynthesizer{}, time.Hour)

		req := httptest.NewRequest(http.MethodPost, "/voice-chat", strings.NewReader("not multipart"))
		rec := httptest.NewRecorder()
		h.VoiceChat(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "MISSING_REQUIRED")
	})

	t.Run("empty transcript is a bad request", func(t *testing.T) {
		svc, _ := newTestService()
		h := NewVoiceHandler(svc, stubTranscriber{text: ""}, stubSynthesizer{}, time.Hour)

		rec := httptest.NewRecorder()
		h.VoiceChat(rec, audioRequest(t, []byte("wav-bytes")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "could not understand")
	})

	t.Run("transcriber failure maps to a gateway error", func(t *testing.T) {
		svc, _ := newTestService()
		h := NewVoiceHandler(
			svc,
			stubTranscriber{err: apperrors.Transcription(errors.New("whisper down"))},
			stubSynthesizer{},
			time.Hour,
		)

		rec := httptest.NewRecorder()
		h.VoiceChat(rec, audioRequest(t, []byte("wav-bytes")))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}
