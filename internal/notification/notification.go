package notification

import (
	"runtime"

	"github.com/dooshek/wakeful/internal/logger"
)

// Notifier defines the interface for system notifications
type Notifier interface {
	NotifyInhibitLost() error
	NotifyReacquireFailed(reason string) error
	Notify(title, message string) error
}

// SilentNotifier is a no-op implementation for library and quiet daemon use
type SilentNotifier struct{}

func NewSilent() Notifier {
	return &SilentNotifier{}
}

func (s *SilentNotifier) NotifyInhibitLost() error                  { return nil }
func (s *SilentNotifier) NotifyReacquireFailed(reason string) error { return nil }
func (s *SilentNotifier) Notify(title, message string) error        { return nil }

type baseNotifier struct {
	platform platformNotifier
}

type platformNotifier interface {
	send(title, message string) error
}

// New creates a new platform-specific notification service
func New() Notifier {
	logger.Debug("Initializing notification system")
	var platform platformNotifier
	switch runtime.GOOS {
	case "darwin":
		logger.Debug("Using Darwin (macOS) notifier")
		platform = newDarwinNotifier()
	default:
		logger.Debug("Using Linux notifier")
		platform = newLinuxNotifier()
	}
	return &baseNotifier{platform: platform}
}

// Common implementation for all platforms
func (n *baseNotifier) NotifyInhibitLost() error {
	logger.Debug("Sending inhibit lost notification")
	return n.Notify("Wakeful", "The platform released the wake lock")
}

func (n *baseNotifier) NotifyReacquireFailed(reason string) error {
	logger.Debug("Sending re-acquire failed notification")
	return n.Notify("Wakeful", "Could not re-acquire the wake lock: "+reason)
}

func (n *baseNotifier) Notify(title, message string) error {
	return n.platform.send(title, message)
}
