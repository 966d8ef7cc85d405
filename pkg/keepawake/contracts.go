package keepawake

import "context"

// WakeLocker requests a releasable wake lock from the platform.
type WakeLocker interface {
	Request(ctx context.Context, reason string) (WakeLockHandle, error)
}

// WakeLockHandle is a held wake lock. The platform may release it on its own
// while the session is hidden; OnRelease observes that without causing it.
type WakeLockHandle interface {
	// Release explicitly gives the lock back. Safe to call more than once.
	Release()

	// OnRelease registers fn to run once if the platform releases the lock
	// without Release having been called.
	OnRelease(fn func())
}

// VisibilityNotifier invokes a callback on each hidden-to-visible session
// transition (never on became-hidden).
type VisibilityNotifier interface {
	Subscribe(onVisible func())
	Unsubscribe()
}

// SessionState answers whether the session is currently visible.
type SessionState interface {
	Visible() bool
}

// MediaDriver owns a silent, looping playback surface.
type MediaDriver interface {
	// Play starts looped silent playback; it fails when the platform blocks
	// playback in the current context.
	Play(ctx context.Context) error

	// Pause stops playback. Always safe to call.
	Pause()
}

// ActivityResetter performs one user-activity reset cycle.
type ActivityResetter interface {
	Reset() error
}

// Notifier is the diagnostic channel for conditions that have no caller to
// return an error to: platform-triggered lock loss and failed re-acquisition.
type Notifier interface {
	NotifyInhibitLost() error
	NotifyReacquireFailed(reason string) error
}
