package keepawake

import (
	"context"
	"time"

	"github.com/dooshek/wakeful/internal/logger"
	"github.com/dooshek/wakeful/internal/types"
)

// strategy is the single payload an Inhibitor carries: exactly one of the
// three variants below, bound at construction and never replaced.
type strategy interface {
	name() types.Strategy
	enable(ctx context.Context) error
	disable()
}

// nativeStrategy holds a portal wake lock and re-acquires it when the
// session becomes visible after the platform let the lock go.
type nativeStrategy struct {
	inh        *Inhibitor // owning inhibitor, captured for the async callbacks
	locker     WakeLocker
	visibility VisibilityNotifier
	reason     string
	handle     WakeLockHandle
	subscribed bool // mutated under the inhibitor mutex
}

func (n *nativeStrategy) name() types.Strategy { return types.StrategyNative }

func (n *nativeStrategy) enable(ctx context.Context) error {
	handle, err := n.locker.Request(ctx, n.reason)
	if err != nil {
		return &PlatformRejectionError{Err: err}
	}

	n.handle = handle
	handle.OnRelease(n.inh.onLockReleased)

	// The platform may force-release the lock while the session is hidden;
	// a visibility restore triggers a fresh enable.
	n.subscribed = true
	n.visibility.Subscribe(n.inh.reacquire)

	return nil
}

func (n *nativeStrategy) disable() {
	if n.handle != nil {
		n.handle.Release()
		n.handle = nil
	}
	n.subscribed = false
	n.visibility.Unsubscribe()
}

// legacyStrategy runs a recurring timer that resets user activity while the
// session is visible. It has no asynchronous failure path.
type legacyStrategy struct {
	session  SessionState
	resetter ActivityResetter
	interval time.Duration
	ticker   *time.Ticker
	stop     chan struct{}
}

func (l *legacyStrategy) name() types.Strategy { return types.StrategyLegacy }

func (l *legacyStrategy) enable(_ context.Context) error {
	// Idempotent safety reset before starting a fresh timer
	l.disable()

	l.ticker = time.NewTicker(l.interval)
	l.stop = make(chan struct{})
	go l.run(l.ticker, l.stop)

	return nil
}

func (l *legacyStrategy) run(ticker *time.Ticker, stop chan struct{}) {
	for {
		select {
		case <-ticker.C:
			if !l.session.Visible() {
				continue
			}
			if err := l.resetter.Reset(); err != nil {
				logger.Warnf("Activity reset failed: %v", err)
			}
		case <-stop:
			return
		}
	}
}

func (l *legacyStrategy) disable() {
	if l.ticker != nil {
		l.ticker.Stop()
		l.ticker = nil
	}
	if l.stop != nil {
		close(l.stop)
		l.stop = nil
	}
}

// mediaStrategy keeps a silent playback loop running.
type mediaStrategy struct {
	media MediaDriver
}

func (m *mediaStrategy) name() types.Strategy { return types.StrategyMedia }

func (m *mediaStrategy) enable(ctx context.Context) error {
	if err := m.media.Play(ctx); err != nil {
		return &PlaybackBlockedError{Err: err}
	}
	return nil
}

func (m *mediaStrategy) disable() {
	m.media.Pause()
}
