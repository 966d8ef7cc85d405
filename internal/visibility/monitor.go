// Package visibility observes desktop session visibility transitions via
// org.freedesktop.ScreenSaver. The session counts as hidden while the
// screensaver or lock screen is active and visible otherwise.
package visibility

import (
	"fmt"
	"sync"

	"github.com/dooshek/wakeful/internal/logger"
	"github.com/godbus/dbus/v5"
)

const (
	screenSaverDest  = "org.freedesktop.ScreenSaver"
	screenSaverPath  = "/org/freedesktop/ScreenSaver"
	screenSaverIface = "org.freedesktop.ScreenSaver"
)

// Monitor owns a session-bus subscription to ActiveChanged signals and
// invokes a callback on each hidden-to-visible transition.
type Monitor struct {
	mu      sync.Mutex
	conn    *dbus.Conn
	signals chan *dbus.Signal
	stop    chan struct{}
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

// Subscribe registers onVisible to run every time the session becomes
// visible again. Subscribing while already subscribed replaces the previous
// registration.
func (m *Monitor) Subscribe(onVisible func()) {
	m.Unsubscribe()

	m.mu.Lock()
	defer m.mu.Unlock()

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		logger.Warnf("Visibility monitor: cannot connect to session bus: %v", err)
		return
	}

	matchRule := fmt.Sprintf(
		"type='signal',interface='%s',member='ActiveChanged'",
		screenSaverIface,
	)
	if err := conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, matchRule).Err; err != nil {
		logger.Warnf("Visibility monitor: failed to add signal match: %v", err)
		conn.Close()
		return
	}

	signals := make(chan *dbus.Signal, 8)
	conn.Signal(signals)
	stop := make(chan struct{})

	m.conn = conn
	m.signals = signals
	m.stop = stop

	go watch(signals, stop, onVisible)

	logger.Debug("Visibility monitor: subscribed")
}

func watch(signals chan *dbus.Signal, stop chan struct{}, onVisible func()) {
	for {
		select {
		case sig := <-signals:
			if sig == nil {
				return
			}
			if sig.Name != screenSaverIface+".ActiveChanged" || len(sig.Body) != 1 {
				continue
			}
			active, ok := sig.Body[0].(bool)
			if !ok {
				continue
			}
			// Only the became-visible edge is interesting
			if !active {
				logger.Debug("Visibility monitor: session became visible")
				onVisible()
			}
		case <-stop:
			return
		}
	}
}

// Unsubscribe removes the registration and tears down the bus connection.
// Idempotent; calling it without a subscription is a no-op.
func (m *Monitor) Unsubscribe() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		return
	}

	close(m.stop)
	m.conn.RemoveSignal(m.signals)
	m.conn.Close()
	m.conn = nil
	m.signals = nil
	m.stop = nil

	logger.Debug("Visibility monitor: unsubscribed")
}

// Visible reports whether the session is currently visible. Errors count as
// visible so the caller errs on the side of keeping the machine awake.
func (m *Monitor) Visible() bool {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return true
	}
	defer conn.Close()

	var active bool
	obj := conn.Object(screenSaverDest, screenSaverPath)
	if err := obj.Call(screenSaverIface+".GetActive", 0).Store(&active); err != nil {
		return true
	}

	return !active
}
