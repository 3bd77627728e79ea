package relay

import "time"

// LivenessMonitor decides, once per interval, which connections missed the
// previous probe. Checking runs before probing so every connection gets one
// full interval to answer.
type LivenessMonitor struct {
	interval time.Duration
}

func NewLivenessMonitor(interval time.Duration) *LivenessMonitor {
	return &LivenessMonitor{interval: interval}
}

func (m *LivenessMonitor) Interval() time.Duration { return m.interval }

// Sweep returns the connections to terminate. Every survivor has its flag
// cleared and a new probe queued; a probe that cannot be queued counts as dead.
func (m *LivenessMonitor) Sweep(conns map[*Conn]struct{}) (dead []*Conn) {
	for c := range conns {
		if !c.alive.Load() {
			dead = append(dead, c)
			continue
		}
		c.alive.Store(false)
		if err := c.peer.Ping(); err != nil {
			dead = append(dead, c)
		}
	}
	return dead
}
