package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Event is one JSON line written by JSONHandler.
type Event struct {
	Type     string           `json:"type"`
	Messages []domain.Message `json:"messages,omitempty"`
	Options  []domain.Option  `json:"options,omitempty"`
	Message  string           `json:"message,omitempty"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(ctx context.Context, messages []domain.Message) error {
	if len(messages) == 0 {
		return nil
	}
	return h.Encoder.Encode(Event{Type: "messages", Messages: messages})
}

func (h *JSONHandler) Options(ctx context.Context, options []domain.Option) error {
	return h.Encoder.Encode(Event{Type: "options", Options: options})
}

// Input accepts a JSON string ("Pricing"), an object ({"text": "Pricing"})
// or a plain line of text.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	line, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}

	text := strings.TrimRight(line, "\r\n")
	trimmed := strings.TrimSpace(text)

	var val string
	if err := json.Unmarshal([]byte(trimmed), &val); err == nil {
		return val, nil
	}

	var obj struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal([]byte(trimmed), &obj); err == nil && obj.Text != nil {
		return *obj.Text, nil
	}

	// Fallback: return raw text (e.g. if they just sent plain text)
	return text, nil
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(Event{Type: "system", Message: msg})
}
