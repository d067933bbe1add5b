package export

import (
	"errors"

	"github.com/handiism/sheet-exporter/internal/destination"
	"github.com/handiism/sheet-exporter/internal/plan"
	"github.com/handiism/sheet-exporter/internal/profile"
	"github.com/handiism/sheet-exporter/internal/setup"
)

// Errors surfaced by the engine.
var (
	ErrConfigMissing    = errors.New("required configuration missing")
	ErrNoDestination    = destination.ErrNoDestination
	ErrSetupUnresolved  = setup.ErrSetupUnresolved
	ErrPrimitiveFailure = errors.New("export primitive failed")
	ErrRenameFailure    = errors.New("could not move export to its final path")
	ErrProfileIO        = profile.ErrProfileIO
	ErrBusy             = errors.New("an export is already running")
)

// ErrorKind classifies engine errors.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindConfigMissing
	KindNoDestination
	KindSetupUnresolved
	KindPrimitiveFailure
	KindRenameFailure
	KindProfileIO
	KindAmbiguousSelection
	KindBusy
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindConfigMissing:
		return "config-missing"
	case KindNoDestination:
		return "no-destination"
	case KindSetupUnresolved:
		return "setup-unresolved"
	case KindPrimitiveFailure:
		return "primitive-failure"
	case KindRenameFailure:
		return "rename-failure"
	case KindProfileIO:
		return "profile-io"
	case KindAmbiguousSelection:
		return "ambiguous-selection"
	case KindBusy:
		return "busy"
	default:
		return "other"
	}
}

// Kind classifies err. A nil error is KindNone.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrConfigMissing):
		return KindConfigMissing
	case errors.Is(err, ErrNoDestination):
		return KindNoDestination
	case errors.Is(err, ErrSetupUnresolved):
		return KindSetupUnresolved
	case errors.Is(err, ErrRenameFailure):
		return KindRenameFailure
	case errors.Is(err, ErrPrimitiveFailure):
		return KindPrimitiveFailure
	case errors.Is(err, ErrProfileIO):
		return KindProfileIO
	case errors.Is(err, plan.ErrAmbiguousSelection):
		return KindAmbiguousSelection
	case errors.Is(err, ErrBusy):
		return KindBusy
	default:
		return KindOther
	}
}
