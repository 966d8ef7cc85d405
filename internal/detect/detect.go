// Package detect answers, once per process lifetime, which sleep-inhibit
// mechanism the current environment can support. The predicates are
// side-effect free; callers are expected to evaluate them a single time at
// construction and never re-probe.
package detect

import (
	"os"

	"github.com/dooshek/wakeful/internal/logger"
	"github.com/godbus/dbus/v5"
)

const (
	portalDest      = "org.freedesktop.portal.Desktop"
	portalPath      = "/org/freedesktop/portal/desktop"
	portalInterface = "org.freedesktop.portal.Inhibit"
)

// Capabilities is the result of a one-shot platform probe.
type Capabilities struct {
	NativeWakeLock bool
	LegacySession  bool
}

// Probe evaluates both predicates once and bundles the result.
func Probe() Capabilities {
	caps := Capabilities{
		NativeWakeLock: SupportsNativeWakeLock(),
		LegacySession:  IsLegacySession(),
	}
	logger.Debugf("Platform probe: native=%v legacy=%v", caps.NativeWakeLock, caps.LegacySession)
	return caps
}

// SupportsNativeWakeLock reports whether the XDG Desktop Portal inhibit
// interface is reachable on the session bus.
func SupportsNativeWakeLock() bool {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		logger.Debugf("Native wake lock unavailable: %v", err)
		return false
	}
	defer conn.Close()

	obj := conn.Object(portalDest, portalPath)
	var version uint32
	if err := obj.Call("org.freedesktop.DBus.Properties.Get", 0,
		portalInterface, "version").Store(&version); err != nil {
		logger.Debugf("Inhibit portal not available: %v", err)
		return false
	}

	return version > 0
}

// IsLegacySession reports whether this is an old graphical session that has
// a display but no session bus, so neither the portal nor a reliable audio
// loop can be relied upon.
func IsLegacySession() bool {
	if !hasDisplay() {
		return false
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return true
	}
	conn.Close()
	return false
}

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}
