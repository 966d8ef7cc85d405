// Package activity performs user-activity resets for sessions without a
// native wake-lock mechanism.
package activity

import (
	"github.com/dooshek/wakeful/internal/logger"
	"github.com/go-vgo/robotgo"
	"github.com/godbus/dbus/v5"
)

const (
	screenSaverDest  = "org.freedesktop.ScreenSaver"
	screenSaverPath  = "/org/freedesktop/ScreenSaver"
	screenSaverIface = "org.freedesktop.ScreenSaver"
)

// Resetter pokes the platform's idle timer back to zero.
type Resetter struct{}

func NewResetter() *Resetter {
	return &Resetter{}
}

// Reset performs one activity-reset cycle: SimulateUserActivity over the
// session bus when available, otherwise a zero-net-displacement mouse move.
func (r *Resetter) Reset() error {
	if err := r.simulateUserActivity(); err == nil {
		return nil
	}
	return r.jiggle()
}

func (r *Resetter) simulateUserActivity() error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return err
	}
	defer conn.Close()

	obj := conn.Object(screenSaverDest, screenSaverPath)
	if err := obj.Call(screenSaverIface+".SimulateUserActivity", 0).Err; err != nil {
		return err
	}

	logger.Debug("Activity reset via screensaver service")
	return nil
}

// jiggle moves the pointer one pixel out and back, which every X11 server
// counts as user input.
func (r *Resetter) jiggle() error {
	x, y := robotgo.Location()
	robotgo.Move(x+1, y)
	robotgo.Move(x, y)
	logger.Debug("Activity reset via pointer jiggle")
	return nil
}
