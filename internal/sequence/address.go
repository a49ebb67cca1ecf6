package sequence

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Dir is the directory a sequence lives in. Exactly two implementations
// exist: LocalDir and RemoteDir. The variant is chosen once when the input
// is parsed and never re-checked per call.
type Dir interface {
	// PathFor joins the directory with a file name.
	PathFor(name string) string
	// String renders the directory for display.
	String() string

	sealedDir()
}

// LocalDir is a directory on the local filesystem.
type LocalDir struct {
	Path string
}

func (d LocalDir) PathFor(name string) string { return filepath.Join(d.Path, name) }
func (d LocalDir) String() string             { return d.Path }
func (LocalDir) sealedDir()                   {}

// RemoteDir is an absolute directory on a remote host reached through the
// persistent session.
type RemoteDir struct {
	User string
	Host string
	Path string
}

// PathFor joins the remote directory and file name with forward slashes.
func (d RemoteDir) PathFor(name string) string {
	trimmed := strings.TrimRight(d.Path, "/")
	if trimmed == "" {
		return "/" + name
	}
	return trimmed + "/" + name
}

func (d RemoteDir) String() string { return d.UserHost() + ":" + d.Path }

// UserHost renders the ssh destination, "user@host".
func (d RemoteDir) UserHost() string { return d.User + "@" + d.Host }

func (RemoteDir) sealedDir() {}

// Address resolves sequence indices to concrete paths. It is replaced
// wholesale when a new file is opened.
type Address struct {
	Pattern Pattern
	Dir     Dir
	Index   uint64
}

// FileNameFor builds the bare file name for idx.
func (a *Address) FileNameFor(idx uint64) string { return a.Pattern.FileNameFor(idx) }

// PathFor builds the full local or remote path for idx.
func (a *Address) PathFor(idx uint64) string { return a.Dir.PathFor(a.FileNameFor(idx)) }

// Display renders the path for idx the way the status line shows it,
// including the user@host prefix for remote sequences.
func (a *Address) Display(idx uint64) string {
	if d, ok := a.Dir.(RemoteDir); ok {
		return d.UserHost() + ":" + a.PathFor(idx)
	}
	return a.PathFor(idx)
}

// Remote reports whether the address points at a remote directory.
func (a *Address) Remote() bool {
	_, ok := a.Dir.(RemoteDir)
	return ok
}

// Target is a parsed CLI input: the directory the sequence lives in and the
// bare name of the opened file.
type Target struct {
	Dir      Dir
	FileName string
}

// ParseTarget interprets input as either "user@host:/absolute/path" or a
// local file path. Remote paths must be absolute; folder inputs are
// intentionally not supported.
func ParseTarget(input string) (Target, error) {
	if user, host, remotePath, ok := splitRemote(input); ok {
		dir, name := path.Split(remotePath)
		if name == "" {
			return Target{}, fmt.Errorf("remote target %q names a directory, not a file", input)
		}
		if dir != "/" {
			dir = strings.TrimRight(dir, "/")
		}
		return Target{
			Dir:      RemoteDir{User: user, Host: host, Path: dir},
			FileName: name,
		}, nil
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return Target{}, fmt.Errorf("resolve input path: %w", err)
	}
	name := filepath.Base(abs)
	if name == "." || name == string(filepath.Separator) {
		return Target{}, fmt.Errorf("input %q does not name a file", input)
	}
	return Target{
		Dir:      LocalDir{Path: filepath.Dir(abs)},
		FileName: name,
	}, nil
}

// splitRemote splits "user@host:/path" into its parts. The path must be
// absolute so a Windows drive spec like "C:/x" is never mistaken for a
// remote target.
func splitRemote(input string) (user, host, remotePath string, ok bool) {
	at := strings.Index(input, "@")
	if at <= 0 {
		return "", "", "", false
	}
	rest := input[at+1:]
	colon := strings.Index(rest, ":")
	if colon <= 0 {
		return "", "", "", false
	}
	remotePath = rest[colon+1:]
	if !strings.HasPrefix(remotePath, "/") {
		return "", "", "", false
	}
	return input[:at], rest[:colon], remotePath, true
}

// ExistsFunc reports whether a file with the given bare name exists inside
// the sequence directory. Implementations stat locally or issue an EXISTS
// command over the persistent session; none of them list the directory.
type ExistsFunc func(name string) (bool, error)

// Match outcome errors. ErrNoMatch means no configured pattern matched the
// file name at all; ErrNoEvidence means a pattern matched syntactically but
// no neighboring index resolved to a real file.
var (
	ErrNoMatch    = errors.New("no configured pattern matches the file name")
	ErrNoEvidence = errors.New("pattern matched but no neighboring index exists")
)

// Pick tries the configured patterns in order and returns the first one
// that matches fileName and has neighbor evidence: at least one existing
// index within ±probeRadius of the matched index. Malformed patterns are
// skipped; their compile error is reported only if nothing else matches.
func Pick(patterns []string, fileName string, probeRadius int, exists ExistsFunc) (Pattern, uint64, error) {
	if probeRadius < 1 {
		probeRadius = 1
	}
	var (
		compileErr error
		rejected   bool
	)
	for _, raw := range patterns {
		pat, err := Compile(raw)
		if err != nil {
			if compileErr == nil {
				compileErr = err
			}
			continue
		}
		idx, ok := pat.Match(fileName)
		if !ok {
			continue
		}
		if hasNeighbor(pat, idx, probeRadius, exists) {
			return pat, idx, nil
		}
		rejected = true
	}
	switch {
	case rejected:
		return Pattern{}, 0, ErrNoEvidence
	case compileErr != nil:
		return Pattern{}, 0, compileErr
	default:
		return Pattern{}, 0, ErrNoMatch
	}
}

// hasNeighbor probes indices outward from idx until one exists or the probe
// radius is exhausted. Probe failures count as absent.
func hasNeighbor(pat Pattern, idx uint64, probeRadius int, exists ExistsFunc) bool {
	for d := uint64(1); d <= uint64(probeRadius); d++ {
		if ok, err := exists(pat.FileNameFor(idx + d)); err == nil && ok {
			return true
		}
		if idx >= d {
			if ok, err := exists(pat.FileNameFor(idx - d)); err == nil && ok {
				return true
			}
		}
	}
	return false
}
