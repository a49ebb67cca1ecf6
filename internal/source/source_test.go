package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/kk-code-lab/seqview/internal/remote"
	"github.com/kk-code-lab/seqview/internal/sequence"
)

func localAddress(t *testing.T, dir string) *sequence.Address {
	t.Helper()
	pat, err := sequence.Compile("frame_###.png")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return &sequence.Address{Pattern: pat, Dir: sequence.LocalDir{Path: dir}, Index: 5}
}

func TestLocalFetch(t *testing.T) {
	dir := t.TempDir()
	want := []byte("pixels")
	if err := os.WriteFile(filepath.Join(dir, "frame_005.png"), want, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	src := NewLocal(localAddress(t, dir))

	data, err := src.Fetch(5)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != string(want) {
		t.Errorf("Fetch=%q, want %q", data, want)
	}
}

func TestLocalFetchNotFound(t *testing.T) {
	src := NewLocal(localAddress(t, t.TempDir()))

	_, err := src.Fetch(11)
	fe, ok := AsError(err)
	if !ok {
		t.Fatalf("err=%v, want *Error", err)
	}
	if fe.Kind != KindNotFound {
		t.Errorf("Kind=%v, want not found", fe.Kind)
	}
}

func TestLocalExists(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "frame_004.png"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	src := NewLocal(localAddress(t, dir))

	if ok, err := src.Exists(4); err != nil || !ok {
		t.Errorf("Exists(4)=(%v,%v), want (true,nil)", ok, err)
	}
	if ok, err := src.Exists(9); err != nil || ok {
		t.Errorf("Exists(9)=(%v,%v), want (false,nil)", ok, err)
	}
}

// stubSession scripts session answers per path.
type stubSession struct {
	files map[string][]byte
	err   error
}

func (s *stubSession) Exists(path string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.files[path]
	return ok, nil
}

func (s *stubSession) Cat(path string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	data, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", remote.ErrNotFound, path)
	}
	return data, nil
}

func remoteAddress(t *testing.T) *sequence.Address {
	t.Helper()
	pat, err := sequence.Compile("frame_###.png")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return &sequence.Address{
		Pattern: pat,
		Dir:     sequence.RemoteDir{User: "u", Host: "h", Path: "/d"},
		Index:   5,
	}
}

func TestRemoteFetch(t *testing.T) {
	sess := &stubSession{files: map[string][]byte{"/d/frame_005.png": []byte("pix")}}
	src := NewRemote(remoteAddress(t), sess)

	data, err := src.Fetch(5)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != "pix" {
		t.Errorf("Fetch=%q", data)
	}
}

func TestRemoteFetchClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", remote.ErrNotFound, KindNotFound},
		{"disconnected", remote.ErrDisconnected, KindDisconnected},
		{"protocol", remote.ErrProtocol, KindProtocol},
		{"other", errors.New("weird"), KindProtocol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewRemote(remoteAddress(t), &stubSession{err: tt.err})
			_, err := src.Fetch(5)
			fe, ok := AsError(err)
			if !ok {
				t.Fatalf("err=%v, want *Error", err)
			}
			if fe.Kind != tt.want {
				t.Errorf("Kind=%v, want %v", fe.Kind, tt.want)
			}
		})
	}
}

func TestRemoteExists(t *testing.T) {
	sess := &stubSession{files: map[string][]byte{"/d/frame_006.png": []byte("x")}}
	src := NewRemote(remoteAddress(t), sess)

	if ok, err := src.Exists(6); err != nil || !ok {
		t.Errorf("Exists(6)=(%v,%v), want (true,nil)", ok, err)
	}
}
