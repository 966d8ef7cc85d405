// Package media keeps a silent, looping playback surface open as a sleep
// inhibiting side effect. Nothing audible is ever produced; the device is
// fed zeroed frames for as long as the loop is logically playing.
package media

import (
	"context"
	"fmt"
	"sync"

	"github.com/dooshek/wakeful/internal/logger"
	"github.com/gen2brain/malgo"
)

const (
	sampleRate = 16000
	channels   = 1
)

// SilentLoop drives a malgo playback device that renders silence.
type SilentLoop struct {
	mu      sync.Mutex
	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	playing bool
}

func NewSilentLoop() *SilentLoop {
	return &SilentLoop{}
}

// Play opens the audio backend and starts silent looped playback. A backend
// or device failure is the playback-blocked condition and is returned to the
// caller.
func (s *SilentLoop) Play(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playing {
		return nil
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize audio context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: func(outputBuffer, inputBuffer []byte, frameCount uint32) {
			// The surface is muted by construction
			for i := range outputBuffer {
				outputBuffer[i] = 0
			}
		},
		// The loop is enforced beyond the backend's own behavior: if the
		// device ever stops while we are logically playing, start it again.
		Stop: func() {
			s.rearm()
		},
	})
	if err != nil {
		mctx.Uninit()
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		mctx.Uninit()
		return fmt.Errorf("failed to start playback: %w", err)
	}

	s.ctx = mctx
	s.device = device
	s.playing = true

	logger.Debug("Silent playback started")
	return nil
}

// rearm restarts playback after an unexpected device stop. Runs on its own
// goroutine because malgo invokes the Stop callback from device teardown
// paths as well.
func (s *SilentLoop) rearm() {
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if !s.playing || s.device == nil {
			return
		}

		logger.Debug("Silent playback stopped unexpectedly, restarting loop")
		if err := s.device.Start(); err != nil {
			logger.Warnf("Failed to restart silent playback: %v", err)
		}
	}()
}

// Pause stops playback and releases the device. Always safe to call.
func (s *SilentLoop) Pause() {
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return
	}
	s.playing = false
	device := s.device
	mctx := s.ctx
	s.device = nil
	s.ctx = nil
	s.mu.Unlock()

	device.Uninit()
	mctx.Uninit()

	logger.Debug("Silent playback paused")
}
