package runner

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxInputSize caps a reply at 4KB. Option labels are short; anything
// near the cap can never match and only bloats stored dialogs.
const DefaultMaxInputSize = 4096

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// InputPolicy vets free text before it becomes a dialog's pending input.
// Adapters apply it; the dialog core accepts any string.
type InputPolicy struct {
	// MaxBytes rejects longer input. Zero or less means DefaultMaxInputSize.
	MaxBytes int
}

// NewInputPolicy returns a policy with the given byte limit.
func NewInputPolicy(maxBytes int) InputPolicy {
	return InputPolicy{MaxBytes: maxBytes}
}

func (p InputPolicy) limit() int {
	if p.MaxBytes <= 0 {
		return DefaultMaxInputSize
	}
	return p.MaxBytes
}

// Clean rejects oversized or malformed text and drops control characters
// other than tab, newline and carriage return. Oversized input is an error,
// not a truncation, so a cut-down reply can never match a shorter label.
func (p InputPolicy) Clean(text string) (string, error) {
	if limit := p.limit(); len(text) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(text), limit)
	}
	if !utf8.ValidString(text) {
		return "", ErrInvalidUTF8
	}
	if strings.IndexFunc(text, unsafeControl) < 0 {
		return text, nil
	}
	return strings.Map(func(r rune) rune {
		if unsafeControl(r) {
			return -1
		}
		return r
	}, text), nil
}

// unsafeControl matches terminal escapes, NUL, BEL and the like.
func unsafeControl(r rune) bool {
	switch r {
	case '\t', '\n', '\r':
		return false
	}
	return unicode.IsControl(r)
}
