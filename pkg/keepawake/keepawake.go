// Package keepawake prevents the machine from entering sleep or screen lock.
//
// An Inhibitor binds exactly one platform strategy when constructed and
// keeps it for its whole lifetime: a portal wake lock where the desktop
// exposes one, a recurring activity-reset timer on legacy sessions without a
// session bus, and a silent audio loop everywhere else.
package keepawake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dooshek/wakeful/internal/activity"
	"github.com/dooshek/wakeful/internal/detect"
	"github.com/dooshek/wakeful/internal/logger"
	"github.com/dooshek/wakeful/internal/media"
	"github.com/dooshek/wakeful/internal/notification"
	"github.com/dooshek/wakeful/internal/types"
	"github.com/dooshek/wakeful/internal/visibility"
	"github.com/dooshek/wakeful/internal/wakelock"
)

const (
	// DefaultResetInterval is the legacy strategy timer period.
	DefaultResetInterval = 15 * time.Second

	defaultReason = "wakeful is keeping the session awake"
)

// Inhibitor is the sleep inhibitor. Construct it with New or NewFromConfig;
// the zero value has no strategy bound and is not usable.
type Inhibitor struct {
	mu       sync.Mutex
	enabled  bool
	strategy strategy
	notifier Notifier
}

// deps are the collaborators a strategy is wired to. Tests inject fakes
// through newInhibitor.
type deps struct {
	locker     WakeLocker
	visibility VisibilityNotifier
	session    SessionState
	resetter   ActivityResetter
	media      MediaDriver
	notifier   Notifier
	reason     string
	interval   time.Duration
}

// New builds an inhibitor with the strategy auto-detected from the platform.
// Detection runs exactly once, here; the chosen strategy is fixed for the
// inhibitor's lifetime even if the environment later changes.
func New() *Inhibitor {
	inh, _ := NewFromConfig(types.StrategyAuto, defaultReason, DefaultResetInterval, nil)
	return inh
}

// NewFromConfig builds an inhibitor from daemon configuration. A strategy of
// StrategyAuto performs the same platform probe as New. A nil notifier
// silences the diagnostic channel.
func NewFromConfig(s types.Strategy, reason string, resetInterval time.Duration, notifier Notifier) (*Inhibitor, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("unknown strategy: %q", s)
	}
	if s == types.StrategyAuto {
		s = chooseStrategy(detect.Probe())
	}
	if reason == "" {
		reason = defaultReason
	}
	if resetInterval <= 0 {
		resetInterval = DefaultResetInterval
	}
	if notifier == nil {
		notifier = notification.NewSilent()
	}

	return newInhibitor(s, defaultDeps(s, reason, resetInterval, notifier)), nil
}

// chooseStrategy maps a one-shot capability probe to a strategy: native wake
// lock when supported, the legacy timer hack on old sessions, silent
// playback otherwise.
func chooseStrategy(caps detect.Capabilities) types.Strategy {
	switch {
	case caps.NativeWakeLock:
		return types.StrategyNative
	case caps.LegacySession:
		return types.StrategyLegacy
	default:
		return types.StrategyMedia
	}
}

func defaultDeps(s types.Strategy, reason string, interval time.Duration, notifier Notifier) deps {
	d := deps{
		notifier: notifier,
		reason:   reason,
		interval: interval,
	}

	// Only the collaborators the bound strategy can reach are constructed
	switch s {
	case types.StrategyNative:
		d.locker = portalLocker{locker: wakelock.NewPortalLocker()}
		d.visibility = visibility.NewMonitor()
	case types.StrategyLegacy:
		d.session = visibility.NewMonitor()
		d.resetter = activity.NewResetter()
	default:
		d.media = media.NewSilentLoop()
	}

	return d
}

// newInhibitor binds exactly one strategy variant from the given
// collaborators.
func newInhibitor(s types.Strategy, d deps) *Inhibitor {
	inh := &Inhibitor{notifier: d.notifier}

	switch s {
	case types.StrategyNative:
		inh.strategy = &nativeStrategy{
			inh:        inh,
			locker:     d.locker,
			visibility: d.visibility,
			reason:     d.reason,
		}
	case types.StrategyLegacy:
		inh.strategy = &legacyStrategy{
			session:  d.session,
			resetter: d.resetter,
			interval: d.interval,
		}
	default:
		inh.strategy = &mediaStrategy{media: d.media}
	}

	logger.Infof("Sleep inhibitor using %s strategy", inh.strategy.name())
	return inh
}

// Enable activates the bound strategy. It returns a *PlatformRejectionError
// when the native lock request is denied and a *PlaybackBlockedError when
// silent playback cannot start; in both cases the inhibitor stays disabled
// and it is the caller's choice whether to retry. Enabling an already
// enabled inhibitor is a no-op.
func (i *Inhibitor) Enable(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.enableLocked(ctx)
}

func (i *Inhibitor) enableLocked(ctx context.Context) error {
	if i.enabled {
		logger.Debug("Inhibitor already enabled")
		return nil
	}

	if err := i.strategy.enable(ctx); err != nil {
		i.enabled = false
		return err
	}

	i.enabled = true
	logger.Infof("Sleep inhibition enabled (%s)", i.strategy.name())
	return nil
}

// Disable deactivates the bound strategy and never fails. Calling it when
// already disabled still runs the strategy cleanup, which is harmless.
func (i *Inhibitor) Disable() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.strategy.disable()
	if i.enabled {
		logger.Infof("Sleep inhibition disabled (%s)", i.strategy.name())
	}
	i.enabled = false
}

// IsEnabled reports whether the strategy's underlying resource is currently
// active. Pure read, no side effects.
func (i *Inhibitor) IsEnabled() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.enabled
}

// Strategy returns the strategy bound at construction.
func (i *Inhibitor) Strategy() types.Strategy {
	return i.strategy.name()
}

// onLockReleased records a platform-triggered release of the native lock.
// Bookkeeping only: it never re-acquires on its own; the next visibility
// restore does that.
func (i *Inhibitor) onLockReleased() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.enabled {
		return
	}

	i.enabled = false
	if ns, ok := i.strategy.(*nativeStrategy); ok {
		ns.handle = nil
	}

	logger.Warn("Platform released the wake lock while enabled")
	if err := i.notifier.NotifyInhibitLost(); err != nil {
		logger.Debugf("Failed to send inhibit-lost notification: %v", err)
	}
}

// reacquire re-runs enable after the session became visible again. A failure
// here has no caller to propagate to, so it is surfaced on the diagnostic
// channel instead; a later explicit Enable still propagates normally.
func (i *Inhibitor) reacquire() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.enabled {
		return
	}
	// A callback can still be in flight when Disable unsubscribes; it must
	// not resurrect the lock.
	if ns, ok := i.strategy.(*nativeStrategy); ok && !ns.subscribed {
		return
	}

	logger.Debug("Session visible again, re-acquiring wake lock")
	if err := i.enableLocked(context.Background()); err != nil {
		logger.Error("Failed to re-acquire wake lock", err)
		if nerr := i.notifier.NotifyReacquireFailed(err.Error()); nerr != nil {
			logger.Debugf("Failed to send re-acquire notification: %v", nerr)
		}
	}
}

// portalLocker adapts the concrete portal locker to the WakeLocker contract.
type portalLocker struct {
	locker *wakelock.PortalLocker
}

func (p portalLocker) Request(ctx context.Context, reason string) (WakeLockHandle, error) {
	handle, err := p.locker.Request(ctx, reason)
	if err != nil {
		return nil, err
	}
	return handle, nil
}
