package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/smartsched/scheduler-server-go/internal/model"
)

const (
	generateTemperature     = 0.7
	generateMaxOutputTokens = 2048
)

// Client calls the Gemini API for entity extraction and date resolution.
// Both operations treat the model as a best-effort oracle: transport
// failures surface as errors, malformed output degrades to an empty result.
type Client struct {
	client *genai.Client
	model  string
	loc    *time.Location
}

func NewClient(ctx context.Context, apiKey, modelName string, loc *time.Location) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, model: modelName, loc: loc}, nil
}

// Extract recognizes scheduling fields in one user message. A response the
// model garbles is not an error: the empty record is returned and the state
// machine re-asks for whatever is still missing.
func (c *Client) Extract(ctx context.Context, userText, summary string, history []model.HistoryEntry) (model.Extraction, error) {
	now := time.Now().In(c.loc)
	prompt := fmt.Sprintf(extractionPrompt,
		summary,
		formatHistory(history),
		userText,
		now.Format("Monday, January 2, 2006 at 3:04 PM MST"),
	)

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return model.Extraction{}, fmt.Errorf("extraction call: %w", err)
	}

	extraction, ok := ParseExtraction(raw)
	if !ok {
		log.Warn().Str("raw", truncate(raw, 200)).Msg("unparseable extraction response, using empty record")
		return model.Extraction{}, nil
	}
	return extraction, nil
}

// ResolveDate turns a natural-language date phrase into a calendar date at
// midnight in the deployment timezone. ok=false means the phrase did not
// resolve; err is reserved for transport failures.
func (c *Client) ResolveDate(ctx context.Context, phrase string, now time.Time) (time.Time, bool, error) {
	anchored := now.In(c.loc)
	prompt := fmt.Sprintf(datePrompt,
		anchored.Format("Monday, January 2, 2006"),
		phrase,
		anchored.AddDate(0, 0, 1).Format("2006-01-02"),
	)

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("date resolution call: %w", err)
	}

	date, ok := ParseResolvedDate(raw, c.loc)
	if !ok {
		log.Debug().Str("phrase", phrase).Msg("date phrase did not resolve")
	}
	return date, ok, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(systemPrompt+"\n\n"+prompt),
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](generateTemperature),
			MaxOutputTokens: generateMaxOutputTokens,
		},
	)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty gemini response")
	}
	return text, nil
}

// rawExtraction mirrors the JSON contract; numbers arrive as floats.
type rawExtraction struct {
	DurationMinutes *float64 `json:"duration_minutes"`
	DatePreference  *string  `json:"date_preference"`
	TimePreference  *string  `json:"time_preference"`
	MeetingTitle    *string  `json:"meeting_title"`
	Intent          string   `json:"intent"`
	SlotNumber      *float64 `json:"slot_number"`
	Confirmation    *string  `json:"confirmation"`
}

// ParseExtraction pulls the first JSON object out of a model response. The
// model tends to wrap JSON in prose or code fences; everything outside the
// braces is ignored.
func ParseExtraction(raw string) (model.Extraction, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return model.Extraction{}, false
	}

	var parsed rawExtraction
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return model.Extraction{}, false
	}

	out := model.Extraction{Intent: model.Intent(parsed.Intent)}
	if out.Intent == "" {
		out.Intent = model.IntentUnclear
	}
	if parsed.DurationMinutes != nil {
		d := int(*parsed.DurationMinutes)
		out.DurationMinutes = &d
	}
	out.DatePhrase = cleanField(parsed.DatePreference)
	out.TimePhrase = cleanField(parsed.TimePreference)
	out.Title = cleanField(parsed.MeetingTitle)
	if parsed.SlotNumber != nil {
		n := int(*parsed.SlotNumber)
		out.SlotNumber = &n
	}
	if conf := cleanField(parsed.Confirmation); conf != nil {
		v := strings.ToLower(*conf)
		if v == "yes" || v == "no" {
			out.Confirmation = &v
		}
	}
	return out, true
}

var resolvedDatePattern = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)

// ParseResolvedDate extracts a YYYY-MM-DD date from a resolver response,
// anchored to midnight in loc.
func ParseResolvedDate(raw string, loc *time.Location) (time.Time, bool) {
	if strings.Contains(strings.ToUpper(raw), "INVALID") {
		return time.Time{}, false
	}
	match := resolvedDatePattern.FindStringSubmatch(raw)
	if match == nil {
		return time.Time{}, false
	}
	parsed, err := time.ParseInLocation("2006-01-02", match[0], loc)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// cleanField trims a pointer string and drops empty or literal-null values.
func cleanField(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, "null") || strings.EqualFold(v, "none") {
		return nil
	}
	return &v
}

func formatHistory(history []model.HistoryEntry) string {
	if len(history) == 0 {
		return "(none)\n"
	}
	var b strings.Builder
	for _, h := range history {
		role := "User"
		if h.Role == "assistant" {
			role = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, h.Text)
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
