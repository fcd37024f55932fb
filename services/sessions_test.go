package services

import (
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
)

func TestSessionsDispatchDeliversEvents(t *testing.T) {
	st := newMemStore()
	notifier := &recordingNotifier{}
	orc := NewOrchestrator(st, notifier, nil, quartz.NewMock(t), time.Minute)
	sessions := NewSessions(orc)

	sessions.Dispatch(Event{Type: EventRules, ChatID: 1})
	sessions.Dispatch(Event{Type: EventRules, ChatID: 2})

	assert.Eventually(t, func() bool {
		return notifier.count() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestSessionsReuseWorkerPerChat(t *testing.T) {
	st := newMemStore()
	notifier := &recordingNotifier{}
	orc := NewOrchestrator(st, notifier, nil, quartz.NewMock(t), time.Minute)
	sessions := NewSessions(orc)

	for i := 0; i < 5; i++ {
		sessions.Dispatch(Event{Type: EventRules, ChatID: 1})
	}

	assert.Eventually(t, func() bool {
		return notifier.count() == 5
	}, time.Second, 10*time.Millisecond)

	sessions.mu.Lock()
	workers := len(sessions.workers)
	sessions.mu.Unlock()
	assert.Equal(t, 1, workers)
}
