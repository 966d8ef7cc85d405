package keepawake

import (
	"context"
	"sync/atomic"
)

type fakeHandle struct {
	released  bool
	onRelease func()
}

func (h *fakeHandle) Release()            { h.released = true }
func (h *fakeHandle) OnRelease(fn func()) { h.onRelease = fn }

type fakeLocker struct {
	err     error
	handles []*fakeHandle
}

func (l *fakeLocker) Request(_ context.Context, _ string) (WakeLockHandle, error) {
	if l.err != nil {
		return nil, l.err
	}
	h := &fakeHandle{}
	l.handles = append(l.handles, h)
	return h, nil
}

type fakeVisibility struct {
	onVisible    func()
	subscribes   int
	unsubscribes int
}

func (v *fakeVisibility) Subscribe(onVisible func()) {
	v.subscribes++
	v.onVisible = onVisible
}

func (v *fakeVisibility) Unsubscribe() {
	v.unsubscribes++
	v.onVisible = nil
}

type fakeSession struct {
	visible atomic.Bool
}

func (s *fakeSession) Visible() bool { return s.visible.Load() }

type fakeResetter struct {
	resets atomic.Int32
}

func (r *fakeResetter) Reset() error {
	r.resets.Add(1)
	return nil
}

type fakeMedia struct {
	err     error
	playing bool
	plays   int
	pauses  int
}

func (m *fakeMedia) Play(_ context.Context) error {
	m.plays++
	if m.err != nil {
		return m.err
	}
	m.playing = true
	return nil
}

func (m *fakeMedia) Pause() {
	m.pauses++
	m.playing = false
}

type fakeNotifier struct {
	lost            int
	reacquireFailed int
}

func (n *fakeNotifier) NotifyInhibitLost() error {
	n.lost++
	return nil
}

func (n *fakeNotifier) NotifyReacquireFailed(_ string) error {
	n.reacquireFailed++
	return nil
}
