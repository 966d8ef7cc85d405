package state

import (
	"sync"
	"time"

	"github.com/dooshek/wakeful/internal/types"
)

var (
	once     sync.Once
	instance *AppState
)

type AppState struct {
	Config *types.Config
}

func Init(cfg *types.Config) {
	once.Do(func() {
		instance = &AppState{
			Config: cfg,
		}
	})
}

func Get() *AppState {
	if instance == nil {
		panic("AppState not initialized")
	}
	return instance
}

func (s *AppState) GetStrategy() types.Strategy {
	return s.Config.Inhibit.Strategy
}

func (s *AppState) GetReason() string {
	return s.Config.Inhibit.Reason
}

func (s *AppState) GetResetInterval() time.Duration {
	return time.Duration(s.Config.Inhibit.ResetIntervalSec) * time.Second
}

func (s *AppState) NotificationsEnabled() bool {
	return s.Config.Inhibit.Notifications
}
