package keepawake

import "fmt"

// PlatformRejectionError is returned by Enable when the platform denies the
// wake-lock request (permissions, battery saver, missing portal backend).
type PlatformRejectionError struct {
	Err error
}

func (e *PlatformRejectionError) Error() string {
	return fmt.Sprintf("wake lock request rejected: %v", e.Err)
}

func (e *PlatformRejectionError) Unwrap() error { return e.Err }

// PlaybackBlockedError is returned by Enable when the silent playback
// fallback cannot start (no audio backend, no playback device).
type PlaybackBlockedError struct {
	Err error
}

func (e *PlaybackBlockedError) Error() string {
	return fmt.Sprintf("playback blocked: %v", e.Err)
}

func (e *PlaybackBlockedError) Unwrap() error { return e.Err }
