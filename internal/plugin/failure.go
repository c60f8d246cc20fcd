package plugin

import "errors"

// FailureKind distinguishes the two ways a runner can fail.
type FailureKind int

const (
	// Reported means the cause was delivered on the reporter's error event.
	Reported FailureKind = iota + 1
	// SilentAbort means a plugin asked to stop without a message.
	SilentAbort
)

// Failure is the only error a Runner returns. It carries no detail about the
// cause; observers get that from the error event.
type Failure struct {
	Kind FailureKind
}

func (f *Failure) Error() string {
	if f.Kind == SilentAbort {
		return "pipeline aborted"
	}
	return "pipeline failed"
}

var (
	// ErrReported is returned by a runner whose transform failed.
	ErrReported = &Failure{Kind: Reported}
	// ErrSilentAbort is returned by a runner whose transform cancelled.
	ErrSilentAbort = &Failure{Kind: SilentAbort}

	// ErrCancel is returned by a transform to stop the pipeline without
	// reporting anything to the user.
	ErrCancel = errors.New("cancel")
)

// IsSilent reports whether err aborts the pipeline without a message.
func IsSilent(err error) bool {
	return errors.Is(err, ErrCancel) || errors.Is(err, ErrSilentAbort)
}

// sentinelFor maps a transform error onto the control-flow failure.
func sentinelFor(err error) error {
	if IsSilent(err) {
		return ErrSilentAbort
	}
	return ErrReported
}
