// Package source abstracts raw frame acquisition over local files or the
// persistent remote session. The variant is chosen once per sequence
// address; callers never re-check locality per fetch.
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kk-code-lab/seqview/internal/remote"
	"github.com/kk-code-lab/seqview/internal/sequence"
)

// Kind classifies a fetch failure.
type Kind int

const (
	// KindNotFound: the file for the index does not exist.
	KindNotFound Kind = iota
	// KindIO: a local read failed for a reason other than absence.
	KindIO
	// KindProtocol: the remote session answered outside the protocol.
	KindProtocol
	// KindDisconnected: the remote session is terminally down; every
	// further remote fetch fails the same way until a new session is built.
	KindDisconnected
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindIO:
		return "io error"
	case KindProtocol:
		return "protocol error"
	case KindDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Error is a classified fetch failure for a single index.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts the classified fetch error, if err carries one.
func AsError(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// Source fetches raw frame bytes by sequence index. Implementations may
// block; callers run them on worker goroutines, never on the interactive
// thread.
type Source interface {
	// Fetch returns the raw bytes for idx. Failures are *Error values.
	Fetch(idx uint64) ([]byte, error)
	// Exists reports whether the file for idx exists without reading it.
	Exists(idx uint64) (bool, error)
}

// Local reads frames straight from the filesystem.
type Local struct {
	addr *sequence.Address
}

// NewLocal builds a Source over a local sequence directory.
func NewLocal(addr *sequence.Address) *Local {
	return &Local{addr: addr}
}

func (l *Local) Fetch(idx uint64) ([]byte, error) {
	path := l.addr.PathFor(idx)
	data, err := os.ReadFile(path)
	if err != nil {
		kind := KindIO
		if errors.Is(err, fs.ErrNotExist) {
			kind = KindNotFound
		}
		return nil, &Error{Kind: kind, Path: path, Err: err}
	}
	return data, nil
}

func (l *Local) Exists(idx uint64) (bool, error) {
	_, err := os.Stat(l.addr.PathFor(idx))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// RemoteSession is the slice of the persistent session the remote source
// needs. *remote.Session satisfies it.
type RemoteSession interface {
	Exists(path string) (bool, error)
	Cat(path string) ([]byte, error)
}

// Remote fetches frames through the persistent session. All calls funnel
// into the session's strictly serialized command channel.
type Remote struct {
	addr *sequence.Address
	sess RemoteSession
}

// NewRemote builds a Source over a remote sequence directory.
func NewRemote(addr *sequence.Address, sess RemoteSession) *Remote {
	return &Remote{addr: addr, sess: sess}
}

func (r *Remote) Fetch(idx uint64) ([]byte, error) {
	path := r.addr.PathFor(idx)
	data, err := r.sess.Cat(path)
	if err != nil {
		return nil, &Error{Kind: classifyRemote(err), Path: path, Err: err}
	}
	return data, nil
}

func (r *Remote) Exists(idx uint64) (bool, error) {
	return r.sess.Exists(r.addr.PathFor(idx))
}

func classifyRemote(err error) Kind {
	switch {
	case errors.Is(err, remote.ErrNotFound):
		return KindNotFound
	case errors.Is(err, remote.ErrDisconnected):
		return KindDisconnected
	default:
		return KindProtocol
	}
}
