// Package logging mirrors the process log stream to a Logstash TCP input.
package logging

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

const (
	dialTimeout   = 2 * time.Second
	writeTimeout  = time.Second
	retryCooldown = 5 * time.Second
)

// LogstashWriter forwards log lines over a single TCP connection. The log
// path must never block on the network, so failed dials and writes drop the
// line and back off until the cooldown passes.
type LogstashWriter struct {
	addr string

	mu        sync.Mutex
	conn      net.Conn
	retryFrom time.Time
	closed    bool
}

func NewLogstashWriter(addr string) (*LogstashWriter, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, errors.New("logstash: empty address")
	}
	return &LogstashWriter{addr: addr}, nil
}

// Write implements io.Writer. It always reports the full length as written;
// a line lost while Logstash is unreachable is not the caller's problem.
func (w *LogstashWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	line := make([]byte, len(p))
	copy(line, p)
	if line[len(line)-1] != '\n' {
		line = append(line, '\n')
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, io.ErrClosedPipe
	}
	if !w.connect() {
		return len(p), nil
	}

	_ = w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := w.conn.Write(line); err != nil {
		w.dropConn()
	}
	return len(p), nil
}

func (w *LogstashWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.conn == nil {
		return nil
	}
	err := w.conn.Close()
	w.conn = nil
	return err
}

func (w *LogstashWriter) connect() bool {
	if w.conn != nil {
		return true
	}
	if time.Since(w.retryFrom) < retryCooldown {
		return false
	}
	conn, err := net.DialTimeout("tcp", w.addr, dialTimeout)
	if err != nil {
		w.retryFrom = time.Now()
		return false
	}
	w.conn = conn
	return true
}

func (w *LogstashWriter) dropConn() {
	if w.conn != nil {
		_ = w.conn.Close()
		w.conn = nil
	}
	w.retryFrom = time.Now()
}
