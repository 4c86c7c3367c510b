package notify

import (
	"fmt"
	"log"
	"os/exec"
	"sync"
)

// Notifier surfaces session changes and errors outside the process.
type Notifier interface {
	SessionChanged(active bool)
	Error(msg string)
}

// New returns the notifier for a configured type: "desktop", "log" or "none".
func New(kind string) Notifier {
	switch kind {
	case "desktop":
		return Desktop{}
	case "log":
		return Log{}
	default:
		return Nop{}
	}
}

type Desktop struct{}

func (Desktop) SessionChanged(active bool) {
	state := "Stopped"
	if active {
		state = "Started"
	}
	cmd := exec.Command("notify-send", "-a", "Voicelink",
		fmt.Sprintf("Voicelink: %s Listening", state))
	if err := cmd.Run(); err != nil {
		log.Printf("Failed to send notification: %v", err)
	}
}

func (Desktop) Error(msg string) {
	cmd := exec.Command("notify-send", "-a", "Voicelink", "-u", "critical", msg)
	if err := cmd.Run(); err != nil {
		log.Printf("Failed to send error notification: %v", err)
	}
}

// Log writes notifications to the standard logger.
type Log struct{}

func (Log) SessionChanged(active bool) {
	if active {
		log.Printf("Voicelink: Listening Started")
		return
	}
	log.Printf("Voicelink: Listening Stopped")
}

func (Log) Error(msg string) {
	log.Printf("Voicelink Error: %s", msg)
}

// Nop is a Notifier that does absolutely nothing.
// Useful in unit tests or headless builds.
type Nop struct{}

func (Nop) SessionChanged(active bool) {}
func (Nop) Error(msg string)           {}

// Switch forwards to a Notifier that can be replaced while in use, e.g.
// after a config reload.
type Switch struct {
	mu sync.RWMutex
	n  Notifier
}

func NewSwitch(n Notifier) *Switch {
	return &Switch{n: n}
}

func (s *Switch) Set(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n = n
}

func (s *Switch) current() Notifier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.n
}

func (s *Switch) SessionChanged(active bool) { s.current().SessionChanged(active) }
func (s *Switch) Error(msg string)           { s.current().Error(msg) }
