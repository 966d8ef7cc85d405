// Package wakelock requests wake locks from the XDG Desktop Portal. This
// works on Wayland and X11 with any compositor that ships a portal backend
// (GNOME, KDE, sway, hyprland, etc.).
package wakelock

import (
	"context"
	"fmt"
	"sync"

	"github.com/dooshek/wakeful/internal/logger"
	"github.com/godbus/dbus/v5"
)

const (
	portalDest      = "org.freedesktop.portal.Desktop"
	portalPath      = "/org/freedesktop/portal/desktop"
	portalInterface = "org.freedesktop.portal.Inhibit"
	requestIface    = "org.freedesktop.portal.Request"

	// Inhibit flags defined by org.freedesktop.portal.Inhibit
	flagLogout     = 1
	flagUserSwitch = 2
	flagSuspend    = 4
	flagIdle       = 8
)

// PortalLocker acquires wake locks through org.freedesktop.portal.Inhibit.
type PortalLocker struct{}

func NewPortalLocker() *PortalLocker {
	return &PortalLocker{}
}

// Request asks the portal to inhibit idle and suspend. The returned Handle
// owns the request object and the bus connection it rode in on.
func (p *PortalLocker) Request(ctx context.Context, reason string) (*Handle, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	obj := conn.Object(portalDest, portalPath)
	options := map[string]dbus.Variant{
		"reason": dbus.MakeVariant(reason),
	}

	// Inhibit(window: s, flags: u, options: a{sv}) -> handle: o
	var requestPath dbus.ObjectPath
	err = obj.CallWithContext(ctx, portalInterface+".Inhibit", 0,
		"", // window identifier (empty for non-sandboxed)
		uint32(flagIdle|flagSuspend),
		options,
	).Store(&requestPath)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("portal inhibit: %w", err)
	}

	logger.Debugf("Wake lock acquired: %s", requestPath)

	return &Handle{
		conn: conn,
		path: requestPath,
		stop: make(chan struct{}),
	}, nil
}

// Handle is an acquired wake lock. The portal may complete (release) the
// request on its own, for example when the session is locked; OnRelease
// observes that.
type Handle struct {
	conn *dbus.Conn
	path dbus.ObjectPath
	stop chan struct{}

	mu       sync.Mutex
	released bool // the portal completed the request on its own
	closed   bool // Release has run
}

// OnRelease registers fn to be called once if the portal completes the
// request without Release having been called. At most one callback is
// supported; a second call replaces nothing and starts no second watcher.
func (h *Handle) OnRelease(fn func()) {
	go h.watchForResponse(fn)
}

// watchForResponse monitors for the Response signal on the request object.
// A Response means the portal has ended the inhibition and the Request
// object no longer exists.
func (h *Handle) watchForResponse(fn func()) {
	matchRule := fmt.Sprintf(
		"type='signal',interface='%s',member='Response',path='%s'",
		requestIface, h.path,
	)

	if err := h.conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, matchRule).Err; err != nil {
		logger.Debugf("Wake lock: failed to add signal match: %v", err)
		return
	}

	signals := make(chan *dbus.Signal, 1)
	h.conn.Signal(signals)

	defer func() {
		h.conn.RemoveSignal(signals)
		_ = h.conn.BusObject().Call("org.freedesktop.DBus.RemoveMatch", 0, matchRule).Err
	}()

	for {
		select {
		case sig := <-signals:
			if sig == nil {
				return
			}
			if sig.Path == h.path && sig.Name == requestIface+".Response" {
				h.mu.Lock()
				alreadyReleased := h.released
				h.released = true
				h.mu.Unlock()

				if !alreadyReleased {
					logger.Debugf("Wake lock released by the portal: %s", h.path)
					fn()
				}
				return
			}
		case <-h.stop:
			return
		}
	}
}

// Release closes the portal request and the bus connection. Safe to call
// more than once; a release already observed from the portal makes this a
// connection cleanup only.
func (h *Handle) Release() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	wasReleased := h.released
	h.released = true
	h.mu.Unlock()

	close(h.stop)

	if h.conn == nil {
		return
	}

	if !wasReleased {
		// Close the request to end the inhibition
		obj := h.conn.Object(portalDest, h.path)
		_ = obj.Call(requestIface+".Close", 0).Err
		logger.Debugf("Wake lock released: %s", h.path)
	}

	h.conn.Close()
}
