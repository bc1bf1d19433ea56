package launcher

import (
	"errors"
	"fmt"
)

var (
	ErrIncompatibleRuntime = errors.New("incompatible java runtime")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrDownload            = errors.New("java download failed")
	ErrExtract             = errors.New("java extraction failed")
	ErrExecutableNotFound  = errors.New("java executable not found")
	ErrNotInstalled        = errors.New("version not installed")
	ErrNoAccount           = errors.New("no account selected")
	ErrLaunch              = errors.New("launch failed")
)

// IncompatibleRuntimeError reports a runtime older than the game requires.
// Runtime is kept so the caller may still launch with it after confirmation.
type IncompatibleRuntimeError struct {
	Runtime  JavaRuntime
	Required int
}

func (e *IncompatibleRuntimeError) Error() string {
	return fmt.Sprintf("java %d at %s is older than the required java %d", e.Runtime.Major, e.Runtime.Path, e.Required)
}

func (e *IncompatibleRuntimeError) Is(target error) bool {
	return target == ErrIncompatibleRuntime
}
