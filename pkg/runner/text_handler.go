package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// TextHandler implements the standard text-based interface.
// User entries are not echoed: the user already sees what they typed.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer

	// OptionsFormatter renders the suggestion line. Defaults to "[A] [B]".
	OptionsFormatter func([]domain.Option) string

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithOptionsFormatter configures how the suggestion line is drawn.
func WithOptionsFormatter(format func([]domain.Option) string) TextHandlerOption {
	return func(h *TextHandler) {
		h.OptionsFormatter = format
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader:           bufio.NewReader(r),
		Writer:           w,
		OptionsFormatter: FormatOptions,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// FormatOptions renders options as bracketed labels.
func FormatOptions(options []domain.Option) string {
	labels := make([]string, len(options))
	for i, opt := range options {
		labels[i] = "[" + opt.Text + "]"
	}
	return strings.Join(labels, " ")
}

// initPump reads lines on a goroutine so Input can honor ctx cancellation.
func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')

		// If we got text (even with EOF), send it
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}

		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			close(h.inputChan)
			return
		}
	}
}

func (h *TextHandler) Output(ctx context.Context, messages []domain.Message) error {
	for _, msg := range messages {
		if msg.Sender != domain.SenderBot {
			continue
		}
		output := msg.Text
		if h.Renderer != nil {
			if rendered, err := h.Renderer(msg.Text); err == nil {
				output = rendered
			}
		}
		if _, err := fmt.Fprintln(h.Writer, strings.TrimSpace(output)); err != nil {
			return err
		}
	}
	return nil
}

func (h *TextHandler) Options(ctx context.Context, options []domain.Option) error {
	if len(options) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(h.Writer, h.OptionsFormatter(options))
	return err
}

// Input returns the next line without its line terminator. Other surrounding
// whitespace is kept: the transcript records what the user typed.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
		fmt.Fprint(h.Writer, "> ")
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-h.inputChan:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimRight(res.text, "\r\n"), nil
	}
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "[System] %s\n", msg)
	return err
}
