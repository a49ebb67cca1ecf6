// Package remote implements the persistent remote session: one long-lived
// ssh subprocess running a line-oriented responder, with strictly
// serialized EXISTS/CAT/QUIT exchanges. One handshake, many commands.
package remote

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// State enumerates the session lifecycle. Disconnected is terminal: a dead
// session is never repaired, the caller constructs a fresh one instead.
type State int32

const (
	StateConnecting State = iota
	StateReady
	StateBusy
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateBusy:
		return "busy"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

var (
	// ErrDisconnected reports a command attempted on a terminally
	// disconnected session.
	ErrDisconnected = errors.New("remote session disconnected")
	// ErrProtocol reports a malformed or truncated response. Any ambiguity
	// in a half-read response is unrecoverable within the same connection.
	ErrProtocol = errors.New("remote protocol error")
	// ErrNotFound is returned by Cat for a NO response.
	ErrNotFound = errors.New("remote file not found")
)

const (
	// defaultTimeout bounds each command's response read. The serialized
	// protocol has no abort message, so a stuck command must kill the
	// session rather than stall it forever.
	defaultTimeout = 30 * time.Second

	maxHeaderLength = 8192
	// maxPayloadLength caps CAT payloads. Frames are single images; far
	// below this in practice.
	maxPayloadLength = 256 * 1024 * 1024
)

// Session owns one Transport exclusively and serializes command/response
// exchanges over it. All methods are safe for concurrent use; concurrent
// commands queue on the internal lock and never interleave on the wire.
type Session struct {
	mu      sync.Mutex
	tr      Transport
	br      *bufio.Reader
	timeout time.Duration
	logger  *zap.Logger

	state   atomic.Int32
	failure error // first transport/protocol failure, guarded by mu
}

// Dial starts the ssh subprocess for userHost ("user@host") and completes
// the READY handshake.
func Dial(userHost string, logger *zap.Logger) (*Session, error) {
	tr, err := dialSSH(userHost)
	if err != nil {
		return nil, err
	}
	sess, err := NewSession(tr, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", userHost, err)
	}
	logger.Info("remote session established", zap.String("target", userHost), zap.Int("port", Port))
	return sess, nil
}

// NewSession performs the handshake over an established transport. On any
// handshake failure the transport is closed.
func NewSession(tr Transport, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		tr:      tr,
		br:      bufio.NewReader(tr),
		timeout: defaultTimeout,
		logger:  logger,
	}
	s.state.Store(int32(StateConnecting))

	line, err := s.readLine()
	if err != nil {
		return nil, s.fail(fmt.Errorf("handshake: %w", err))
	}
	if line != "READY" {
		return nil, s.fail(fmt.Errorf("%w: unexpected handshake line %q", ErrProtocol, line))
	}
	s.state.Store(int32(StateReady))
	return s, nil
}

// State returns the current lifecycle state without blocking.
func (s *Session) State() State { return State(s.state.Load()) }

// SetTimeout adjusts the per-command response timeout.
func (s *Session) SetTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d > 0 {
		s.timeout = d
	}
}

// Exists asks the responder whether path exists.
func (s *Session) Exists(path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.beginCommand(); err != nil {
		return false, err
	}
	defer s.endCommand()

	if err := s.writeLine("EXISTS " + sanitizePath(path)); err != nil {
		return false, s.fail(fmt.Errorf("send EXISTS: %w", err))
	}
	line, err := s.readLine()
	if err != nil {
		return false, s.fail(fmt.Errorf("read EXISTS response: %w", err))
	}
	switch line {
	case "OK":
		return true, nil
	case "NO":
		return false, nil
	default:
		return false, s.fail(fmt.Errorf("%w: unexpected EXISTS response %q", ErrProtocol, line))
	}
}

// Cat reads the full contents of path. A NO response yields ErrNotFound and
// leaves the session ready for the next command; a truncated or malformed
// payload is a protocol error and terminates the session.
func (s *Session) Cat(path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.beginCommand(); err != nil {
		return nil, err
	}
	defer s.endCommand()

	if err := s.writeLine("CAT " + sanitizePath(path)); err != nil {
		return nil, s.fail(fmt.Errorf("send CAT: %w", err))
	}
	header, err := s.readLine()
	if err != nil {
		return nil, s.fail(fmt.Errorf("read CAT header: %w", err))
	}
	if header == "NO" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	size, err := parseCatHeader(header)
	if err != nil {
		return nil, s.fail(err)
	}
	payload, err := s.readPayload(size)
	if err != nil {
		return nil, s.fail(fmt.Errorf("%w: CAT payload: %v", ErrProtocol, err))
	}
	s.logger.Debug("cat", zap.String("path", path), zap.Int("bytes", len(payload)))
	return payload, nil
}

// Close sends QUIT so the responder exits cleanly, then tears the transport
// down. Idempotent; safe after a failure.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.State() == StateDisconnected {
		return nil
	}
	_ = s.writeLine("QUIT")
	s.state.Store(int32(StateDisconnected))
	s.failure = ErrDisconnected
	return s.tr.Close()
}

// beginCommand validates the session is usable and marks it busy. Callers
// hold mu.
func (s *Session) beginCommand() error {
	if s.State() != StateReady {
		if s.failure != nil {
			return fmt.Errorf("%w: %v", ErrDisconnected, s.failure)
		}
		return ErrDisconnected
	}
	s.state.Store(int32(StateBusy))
	return nil
}

// endCommand returns the session to ready unless it died mid-command.
func (s *Session) endCommand() {
	s.state.CompareAndSwap(int32(StateBusy), int32(StateReady))
}

// fail transitions to the terminal disconnected state, closes the
// transport, and returns err for propagation. No silent partial recovery:
// any transport or protocol failure ends the session.
func (s *Session) fail(err error) error {
	if s.failure == nil {
		s.failure = err
		s.logger.Warn("remote session failed", zap.Error(err))
	}
	s.state.Store(int32(StateDisconnected))
	_ = s.tr.Close()
	return err
}

func (s *Session) writeLine(line string) error {
	_, err := io.WriteString(s.tr, line+"\n")
	return err
}

// readLine reads one newline-terminated header line under the command
// timeout. On timeout the session is already doomed; fail closes the
// transport, which also unblocks the abandoned reader goroutine.
func (s *Session) readLine() (string, error) {
	type lineResult struct {
		line string
		err  error
	}
	ch := make(chan lineResult, 1)
	go func() {
		line, err := readHeaderLine(s.br)
		ch <- lineResult{line, err}
	}()
	select {
	case r := <-ch:
		return r.line, r.err
	case <-time.After(s.timeout):
		return "", fmt.Errorf("%w: no response within %v", ErrProtocol, s.timeout)
	}
}

// readPayload reads exactly size bytes under the command timeout.
func (s *Session) readPayload(size int) ([]byte, error) {
	type payloadResult struct {
		data []byte
		err  error
	}
	ch := make(chan payloadResult, 1)
	go func() {
		buf := make([]byte, size)
		_, err := io.ReadFull(s.br, buf)
		ch <- payloadResult{buf, err}
	}()
	select {
	case r := <-ch:
		return r.data, r.err
	case <-time.After(s.timeout):
		return nil, fmt.Errorf("no payload within %v", s.timeout)
	}
}

// readHeaderLine reads bytes up to a newline, bounding header length so a
// misbehaving responder cannot grow the buffer without limit.
func readHeaderLine(br *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		c, err := br.ReadByte()
		if err != nil {
			return "", err
		}
		if c == '\n' {
			return strings.TrimRight(b.String(), "\r"), nil
		}
		if b.Len() >= maxHeaderLength {
			return "", fmt.Errorf("%w: header exceeds %d bytes", ErrProtocol, maxHeaderLength)
		}
		b.WriteByte(c)
	}
}

// parseCatHeader parses "OK <byte-count>".
func parseCatHeader(header string) (int, error) {
	fields := strings.Fields(header)
	if len(fields) != 2 || fields[0] != "OK" {
		return 0, fmt.Errorf("%w: unexpected CAT header %q", ErrProtocol, header)
	}
	size, err := strconv.Atoi(fields[1])
	if err != nil || size < 0 {
		return 0, fmt.Errorf("%w: bad CAT byte count %q", ErrProtocol, fields[1])
	}
	if size > maxPayloadLength {
		return 0, fmt.Errorf("%w: CAT byte count %d exceeds maximum %d", ErrProtocol, size, maxPayloadLength)
	}
	return size, nil
}

// sanitizePath strips line separators so a hostile file name cannot inject
// a second command into the line protocol.
func sanitizePath(p string) string {
	p = strings.ReplaceAll(p, "\n", "")
	return strings.ReplaceAll(p, "\r", "")
}
