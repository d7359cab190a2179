package jobs

import (
	"log"
	"time"
)

// SessionPruner is the part of the bot session manager the janitor needs
type SessionPruner interface {
	PruneIdle(ttl time.Duration) int
}

// SessionJanitor evicts review sessions that have been idle past their TTL
type SessionJanitor struct {
	sessions SessionPruner
	ttl      time.Duration
	interval time.Duration
	stopChan chan struct{}
}

// NewSessionJanitor creates a janitor. A zero or negative ttl disables it.
func NewSessionJanitor(sessions SessionPruner, ttl time.Duration) *SessionJanitor {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	return &SessionJanitor{
		sessions: sessions,
		ttl:      ttl,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the background pruning loop
func (j *SessionJanitor) Start() {
	if j.ttl <= 0 {
		log.Println("⚠️ Session janitor disabled (no TTL configured)")
		return
	}

	log.Printf("✅ Session janitor started (ttl=%s, every %s)", j.ttl, j.interval)
	go j.run()
}

// Stop halts the pruning loop
func (j *SessionJanitor) Stop() {
	close(j.stopChan)
	log.Println("🛑 Session janitor stopped")
}

func (j *SessionJanitor) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if pruned := j.sessions.PruneIdle(j.ttl); pruned > 0 {
				log.Printf("🧹 Pruned %d idle review session(s)", pruned)
			}
		case <-j.stopChan:
			return
		}
	}
}
