package failure

import (
	"errors"
	"strings"
)

// Sentinel errors for every failure class the client distinguishes.
// Concrete error types in other packages report their class through an
// Is method so callers only ever match against these values.
var (
	// ErrAuthRequired means the operation needs a signed-in identity that
	// is absent, or the remote API rejected the credential.
	ErrAuthRequired = errors.New("authentication required")

	// ErrStale means a response arrived after the screen or quiz session
	// that requested it stopped being active. It is discarded silently.
	ErrStale = errors.New("stale response discarded")

	// ErrRemote means a network or server error on a remote call.
	ErrRemote = errors.New("remote request failed")

	// ErrValidation means the input was rejected locally before any
	// network call was made.
	ErrValidation = errors.New("validation failed")

	// ErrDataIntegrity means fetched data referenced ids that do not exist
	// or was missing required fields.
	ErrDataIntegrity = errors.New("data integrity violation")
)

// Kind classifies an error into one of the failure classes.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuthRequired
	KindStale
	KindRemote
	KindValidation
	KindDataIntegrity
)

func (k Kind) String() string {
	switch k {
	case KindAuthRequired:
		return "auth_required"
	case KindStale:
		return "stale"
	case KindRemote:
		return "remote"
	case KindValidation:
		return "validation"
	case KindDataIntegrity:
		return "data_integrity"
	default:
		return "unknown"
	}
}

// KindOf maps err to its failure class. A nil error is KindUnknown.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrAuthRequired):
		return KindAuthRequired
	case errors.Is(err, ErrStale):
		return KindStale
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrDataIntegrity):
		return KindDataIntegrity
	case errors.Is(err, ErrRemote):
		return KindRemote
	default:
		return KindUnknown
	}
}

// Messager is implemented by errors that carry a short message suitable
// for showing to the user as-is.
type Messager interface {
	UserMessage() string
}

// Notice returns the text of a transient, dismissible notice for err.
// Stale errors produce an empty notice since they are never surfaced.
func Notice(err error) string {
	if err == nil {
		return ""
	}
	var m Messager
	if errors.As(err, &m) {
		if msg := strings.TrimSpace(m.UserMessage()); msg != "" {
			return msg
		}
	}
	switch KindOf(err) {
	case KindStale:
		return ""
	case KindAuthRequired:
		return "Please log in to continue."
	case KindRemote:
		return "Something went wrong talking to the server. Please try again."
	case KindDataIntegrity:
		return "Some course data looks incomplete."
	default:
		return err.Error()
	}
}
