package notification

import (
	"os/exec"
	"sync"

	"github.com/dooshek/wakeful/internal/logger"
)

var (
	instance platformNotifier
	once     sync.Once
)

type linuxNotifier struct{}

func newLinuxNotifier() platformNotifier {
	once.Do(func() {
		logger.Debug("Initializing Linux notifier")
		instance = &linuxNotifier{}
	})

	return instance
}

func (n *linuxNotifier) send(title, message string) error {
	logger.Debugf("Sending notification: %s - %s", title, message)
	go func() {
		if err := exec.Command("notify-send", title, message).Run(); err != nil {
			logger.Errorf("Failed to send notification: %v", err)
		}
	}()
	return nil
}
