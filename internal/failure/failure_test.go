package failure

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type userErr struct{ msg string }

func (e *userErr) Error() string       { return "wrapped: " + e.msg }
func (e *userErr) UserMessage() string { return e.msg }
func (e *userErr) Is(target error) bool {
	return target == ErrRemote
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"auth", ErrAuthRequired, KindAuthRequired},
		{"wrapped stale", fmt.Errorf("load track: %w", ErrStale), KindStale},
		{"validation", fmt.Errorf("submit: %w", ErrValidation), KindValidation},
		{"integrity", ErrDataIntegrity, KindDataIntegrity},
		{"typed remote", &userErr{msg: "boom"}, KindRemote},
		{"plain", errors.New("other"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestNotice(t *testing.T) {
	assert.Equal(t, "", Notice(nil))
	assert.Equal(t, "", Notice(fmt.Errorf("x: %w", ErrStale)))
	assert.Equal(t, "Invalid credentials", Notice(fmt.Errorf("login: %w", &userErr{msg: "Invalid credentials"})))
	assert.Equal(t, "Please log in to continue.", Notice(ErrAuthRequired))
	assert.Contains(t, Notice(&userErr{}), "server")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "remote", KindRemote.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
