package services

import (
	"log"
	"sync"
	"time"
)

const (
	workerQueueSize   = 64
	workerIdleTimeout = 5 * time.Minute
)

type chatWorker struct {
	events chan Event
}

// Sessions fans inbound events out to one worker goroutine per chat, so all
// state transitions for a chat are serialized while different chats run in
// parallel. Workers are created on demand and torn down after sitting idle.
type Sessions struct {
	orc  *Orchestrator
	idle time.Duration

	mu      sync.Mutex
	workers map[int64]*chatWorker
}

func NewSessions(orc *Orchestrator) *Sessions {
	s := &Sessions{
		orc:     orc,
		idle:    workerIdleTimeout,
		workers: make(map[int64]*chatWorker),
	}
	orc.SetDispatch(s.Dispatch)
	return s
}

// Dispatch enqueues an event for its chat's worker, starting one if needed.
// A full queue drops the event rather than blocking the caller.
func (s *Sessions) Dispatch(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.workers[ev.ChatID]
	if w == nil {
		w = &chatWorker{events: make(chan Event, workerQueueSize)}
		s.workers[ev.ChatID] = w
		go s.run(ev.ChatID, w)
	}

	select {
	case w.events <- ev:
	default:
		log.Printf("sessions: chat %d queue full, dropping event %d", ev.ChatID, ev.Type)
	}
}

func (s *Sessions) run(chatID int64, w *chatWorker) {
	for {
		select {
		case ev := <-w.events:
			s.orc.HandleEvent(ev)
		case <-time.After(s.idle):
			// Exit only when the queue is provably empty. Dispatch holds
			// the same mutex while enqueueing, so a worker that is still
			// in the map cannot miss an event.
			s.mu.Lock()
			if len(w.events) == 0 {
				delete(s.workers, chatID)
				s.mu.Unlock()
				return
			}
			s.mu.Unlock()
		}
	}
}
