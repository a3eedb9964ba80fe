package logging

import (
	"io"
	"net"
	"slices"
	"sync"
	"time"
)

// logstashSink mirrors JSON records to a Logstash TCP input over one
// long-lived connection. While the collector is down records are dropped and
// a reconnect is tried at most once per backoff, so the UI never waits on it.
type logstashSink struct {
	addr    string
	timeout time.Duration
	backoff time.Duration
	dial    func(network, addr string, timeout time.Duration) (net.Conn, error)
	now     func() time.Time

	mu        sync.Mutex
	conn      net.Conn
	downUntil time.Time
	closed    bool
}

func newLogstashSink(addr string) *logstashSink {
	return &logstashSink{
		addr:    addr,
		timeout: 2 * time.Second,
		backoff: 5 * time.Second,
		dial:    net.DialTimeout,
		now:     time.Now,
	}
}

// Write sends one record, newline terminated. It never reports a delivery
// failure; only a write after Close is an error.
func (s *logstashSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, io.ErrClosedPipe
	}
	if len(p) == 0 {
		return 0, nil
	}
	conn := s.connect()
	if conn == nil {
		return len(p), nil
	}

	record := p
	if p[len(p)-1] != '\n' {
		record = slices.Concat(p, []byte{'\n'})
	}
	_ = conn.SetWriteDeadline(s.now().Add(s.timeout))
	if _, err := conn.Write(record); err != nil {
		s.markDown()
	}
	return len(p), nil
}

// connect returns the live connection, dialing one unless inside a backoff.
func (s *logstashSink) connect() net.Conn {
	if s.conn != nil || s.now().Before(s.downUntil) {
		return s.conn
	}
	conn, err := s.dial("tcp", s.addr, s.timeout)
	if err != nil {
		s.downUntil = s.now().Add(s.backoff)
		return nil
	}
	s.conn = conn
	return conn
}

func (s *logstashSink) markDown() {
	_ = s.conn.Close()
	s.conn = nil
	s.downUntil = s.now().Add(s.backoff)
}

// Close drops the connection; later writes fail.
func (s *logstashSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
