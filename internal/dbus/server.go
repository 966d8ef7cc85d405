package dbus

import (
	"context"
	"fmt"
	"sync"

	"github.com/dooshek/wakeful/internal/logger"
	"github.com/dooshek/wakeful/internal/notification"
	"github.com/dooshek/wakeful/internal/state"
	"github.com/dooshek/wakeful/pkg/keepawake"
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const (
	dbusServiceName = "com.dooshek.wakeful"
	dbusObjectPath  = "/com/dooshek/wakeful/Inhibitor"
	dbusInterface   = "com.dooshek.wakeful.Inhibitor"
)

// Server exposes the sleep inhibitor over D-Bus for host desktops
type Server struct {
	conn      *dbus.Conn
	inhibitor *keepawake.Inhibitor
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
}

// NewServer creates a new D-Bus server wrapping an inhibitor built from the
// daemon configuration
func NewServer() (*Server, error) {
	st := state.Get()

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		ctx:    ctx,
		cancel: cancel,
	}

	var desktop keepawake.Notifier = notification.NewSilent()
	if st.NotificationsEnabled() {
		desktop = notification.New()
	}

	inhibitor, err := keepawake.NewFromConfig(
		st.GetStrategy(),
		st.GetReason(),
		st.GetResetInterval(),
		&signalNotifier{server: s, next: desktop},
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize inhibitor: %w", err)
	}

	s.inhibitor = inhibitor
	return s, nil
}

// signalNotifier mirrors the inhibitor's diagnostic channel onto the bus so
// clients learn about a platform-triggered lock loss without polling
// GetStatus, then forwards to the desktop notifier.
type signalNotifier struct {
	server *Server
	next   keepawake.Notifier
}

func (n *signalNotifier) NotifyInhibitLost() error {
	n.server.emitSignal("InhibitLost")
	return n.next.NotifyInhibitLost()
}

func (n *signalNotifier) NotifyReacquireFailed(reason string) error {
	n.server.emitSignal("InhibitError", reason)
	return n.next.NotifyReacquireFailed(reason)
}

// Start starts the D-Bus server
func (s *Server) Start() error {
	var err error
	s.conn, err = dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	// Request name
	reply, err := s.conn.RequestName(dbusServiceName, dbus.NameFlagDoNotQueue)
	if err != nil {
		s.conn.Close()
		return fmt.Errorf("failed to request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		s.conn.Close()
		return fmt.Errorf("name already taken")
	}

	// Export object
	err = s.conn.Export(s, dbusObjectPath, dbusInterface)
	if err != nil {
		s.conn.Close()
		return fmt.Errorf("failed to export object: %w", err)
	}

	err = s.conn.Export(introspect.NewIntrospectable(introspectNode()), dbusObjectPath, "org.freedesktop.DBus.Introspectable")
	if err != nil {
		s.conn.Close()
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	logger.Infof("🔌 D-Bus service started: %s", dbusServiceName)
	logger.Infof("💡 Desktop clients can now toggle sleep inhibition")

	return nil
}

// introspectNode describes the exported interface: the control methods plus
// the signals mirroring inhibitor state changes and diagnostics
func introspectNode() *introspect.Node {
	return &introspect.Node{
		Name: dbusObjectPath,
		Interfaces: []introspect.Interface{{
			Name: dbusInterface,
			Methods: []introspect.Method{
				{
					Name: "Enable",
				},
				{
					Name: "Disable",
				},
				{
					Name: "GetStatus",
					Args: []introspect.Arg{
						{Name: "is_enabled", Type: "b", Direction: "out"},
						{Name: "strategy", Type: "s", Direction: "out"},
					},
				},
			},
			Signals: []introspect.Signal{
				{Name: "InhibitEnabled"},
				{Name: "InhibitDisabled"},
				{Name: "InhibitLost"},
				{
					Name: "InhibitError",
					Args: []introspect.Arg{
						{Name: "error", Type: "s"},
					},
				},
			},
		}},
	}
}

// Stop disables the inhibitor and stops the D-Bus server
func (s *Server) Stop() {
	s.inhibitor.Disable()
	s.cancel()
	if s.conn != nil {
		s.conn.Close()
	}
	logger.Infof("🔌 D-Bus service stopped")
}

// Wait waits for the server context to be cancelled
func (s *Server) Wait() {
	<-s.ctx.Done()
}

// Enable activates sleep inhibition (D-Bus method)
func (s *Server) Enable() *dbus.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Debugf("D-Bus: Enable called")

	if err := s.inhibitor.Enable(s.ctx); err != nil {
		logger.Errorf("D-Bus: Failed to enable inhibition", err)
		s.emitSignal("InhibitError", err.Error())
		return dbus.MakeFailedError(err)
	}

	s.emitSignal("InhibitEnabled")
	return nil
}

// Disable deactivates sleep inhibition (D-Bus method)
func (s *Server) Disable() *dbus.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Debugf("D-Bus: Disable called")

	s.inhibitor.Disable()
	s.emitSignal("InhibitDisabled")
	return nil
}

// GetStatus returns current inhibition status and strategy (D-Bus method)
func (s *Server) GetStatus() (bool, string, *dbus.Error) {
	return s.inhibitor.IsEnabled(), string(s.inhibitor.Strategy()), nil
}

// emitSignal emits a D-Bus signal
func (s *Server) emitSignal(name string, args ...interface{}) {
	if s.conn == nil {
		logger.Warnf("D-Bus: Cannot emit signal %s - no connection", name)
		return
	}

	signalPath := dbus.ObjectPath(dbusObjectPath)
	signalName := dbusInterface + "." + name

	err := s.conn.Emit(signalPath, signalName, args...)
	if err != nil {
		logger.Errorf("D-Bus: Failed to emit signal %s", err, name)
	} else {
		logger.Debugf("D-Bus: Emitted signal: %s", name)
	}
}
