package rest

import (
	"crypto/tls"
	"net/http/httptrace"
	"sync"
	"time"
)

// Timing breaks a call down into connection phases. Phases that did not
// happen, such as DNS on a reused connection, are zero.
type Timing struct {
	DNSLookup       time.Duration
	TCPConnect      time.Duration
	TLSHandshake    time.Duration
	TimeToFirstByte time.Duration
	ContentTransfer time.Duration
	Total           time.Duration
}

// tracer collects phase times for one call. Trace hooks can fire from the
// transport's dialing goroutines, hence the lock.
type tracer struct {
	mu sync.Mutex

	start        time.Time
	dnsStart     time.Time
	connectStart time.Time
	tlsStart     time.Time
	lastPhaseEnd time.Time
	dnsDone      bool
	connectDone  bool

	timing Timing
}

func newTracer() *tracer {
	now := time.Now()
	return &tracer{start: now, lastPhaseEnd: now}
}

func (t *tracer) clientTrace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) {
			t.mu.Lock()
			t.dnsStart = time.Now()
			t.mu.Unlock()
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			t.mu.Lock()
			defer t.mu.Unlock()
			now := time.Now()
			t.timing.DNSLookup = now.Sub(t.dnsStart)
			t.dnsDone = true
			t.lastPhaseEnd = now
		},
		ConnectStart: func(network, addr string) {
			t.mu.Lock()
			defer t.mu.Unlock()
			if t.dnsDone || t.connectStart.IsZero() {
				t.connectStart = time.Now()
			}
		},
		ConnectDone: func(network, addr string, err error) {
			if err != nil {
				return
			}
			t.mu.Lock()
			defer t.mu.Unlock()
			now := time.Now()
			t.timing.TCPConnect = now.Sub(t.connectStart)
			t.connectDone = true
			t.lastPhaseEnd = now
		},
		TLSHandshakeStart: func() {
			t.mu.Lock()
			t.tlsStart = time.Now()
			t.mu.Unlock()
		},
		TLSHandshakeDone: func(_ tls.ConnectionState, err error) {
			if err != nil {
				return
			}
			t.mu.Lock()
			defer t.mu.Unlock()
			now := time.Now()
			t.timing.TLSHandshake = now.Sub(t.tlsStart)
			t.lastPhaseEnd = now
		},
		GotFirstResponseByte: func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			t.timing.TimeToFirstByte = time.Since(t.lastPhaseEnd)
		},
	}
}

// finish records the end of the call. transferStart is when body reading
// began, or zero for streamed results.
func (t *tracer) finish(transferStart time.Time) Timing {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !transferStart.IsZero() {
		t.timing.ContentTransfer = time.Since(transferStart)
	}
	t.timing.Total = time.Since(t.start)
	return t.timing
}
