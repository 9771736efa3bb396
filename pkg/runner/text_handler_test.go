package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
)

func TestTextHandler_Output(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), outBuf)

	handler.Renderer = func(s string) (string, error) {
		return "Rendered: " + s, nil
	}

	err := handler.Output(context.Background(), []domain.Message{
		domain.UserMessage("typed"),
		domain.BotMessage("Hello World"),
	})
	if err != nil {
		t.Fatalf("Output failed: %v", err)
	}

	output := outBuf.String()
	if output != "Rendered: Hello World\n" {
		t.Errorf("Expected only the rendered bot line, got '%s'", output)
	}
}

func TestTextHandler_Options(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), outBuf)

	_ = handler.Options(context.Background(), nil)
	if outBuf.Len() != 0 {
		t.Errorf("Expected no output for empty options, got %q", outBuf.String())
	}

	_ = handler.Options(context.Background(), []domain.Option{{Text: "Yes"}, {Text: "No"}})
	if outBuf.String() != "[Yes] [No]\n" {
		t.Errorf("Unexpected options line %q", outBuf.String())
	}
}

func TestTextHandler_Input(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(" my user input \r\nlast"), outBuf)

	val, err := handler.Input(context.Background())
	if err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	if val != " my user input " {
		t.Errorf("Expected ' my user input ', got '%s'", val)
	}

	val, err = handler.Input(context.Background())
	if err != nil || val != "last" {
		t.Errorf("Expected unterminated last line, got %q (%v)", val, err)
	}

	if _, err := handler.Input(context.Background()); err != io.EOF {
		t.Errorf("Expected EOF, got %v", err)
	}

	if prompt := outBuf.String(); prompt != "> > > " {
		t.Errorf("Expected prompts, got '%s'", prompt)
	}
}

func TestTextHandler_InputCanceled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	handler := NewTextHandler(r, io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := handler.Input(ctx); err != context.DeadlineExceeded {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}
