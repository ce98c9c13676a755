package stream

import "sync"

// maxTotalStreams caps concurrent SSE connections across all IPs; each one
// carries a full simulation session.
const maxTotalStreams = 1000

// streamLimiter tracks concurrent SSE connections per IP and globally.
type streamLimiter struct {
	mu       sync.Mutex
	perIP    map[string]int
	total    int
	maxPerIP int
}

func newStreamLimiter(maxPerIP int) *streamLimiter {
	return &streamLimiter{
		perIP:    make(map[string]int),
		maxPerIP: maxPerIP,
	}
}

// acquire attempts to register a new connection for the given IP.
// Returns false if the IP or global limit has been reached.
func (l *streamLimiter) acquire(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.total >= maxTotalStreams {
		return false
	}
	if l.perIP[ip] >= l.maxPerIP {
		return false
	}

	l.perIP[ip]++
	l.total++
	return true
}

// release decrements the connection count for the given IP.
func (l *streamLimiter) release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.perIP[ip]--
	l.total--
	if l.perIP[ip] <= 0 {
		delete(l.perIP, ip)
	}
}

// count returns the number of active connections for the given IP.
func (l *streamLimiter) count(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.perIP[ip]
}
