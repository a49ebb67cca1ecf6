package remote

import (
	"fmt"
	"io"
	"os/exec"
	"strconv"
)

// Port is the fixed ssh port for remote sequences. It is deliberately not
// user-settable; the transport targets one known environment.
const Port = 58022

// responderScript runs on the remote host for the lifetime of the session.
// It prints READY once, then answers one command per line:
//
//	EXISTS <path> -> OK | NO
//	CAT <path>    -> OK <byte-count> then exactly that many raw bytes | NO
//	QUIT          -> exit
//
// The read loop blocks on stdin and exits at EOF, so an abrupt transport
// close also terminates it.
const responderScript = `
set -eu
echo READY
while IFS= read -r line; do
  cmd=${line%% *}
  arg=${line#* }
  case "$cmd" in
    QUIT)
      exit 0
      ;;
    EXISTS)
      [ "$arg" != "$line" ] && [ -f "$arg" ] && echo OK || echo NO
      ;;
    CAT)
      if [ "$arg" != "$line" ] && [ -f "$arg" ]; then
        n=$(wc -c < "$arg" | tr -d '[:space:]')
        echo "OK $n"
        cat -- "$arg"
      else
        echo NO
      fi
      ;;
    *)
      echo NO
      ;;
  esac
done
`

// Transport is the byte pipe carrying the session protocol. The production
// implementation wraps an ssh subprocess; tests substitute in-memory pipes.
type Transport interface {
	io.ReadWriteCloser
}

// sshTransport adapts the ssh subprocess pipes to Transport.
type sshTransport struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
}

func (t *sshTransport) Read(p []byte) (int, error)  { return t.stdout.Read(p) }
func (t *sshTransport) Write(p []byte) (int, error) { return t.stdin.Write(p) }

// Close tears the subprocess down. Closing stdin lets the remote read loop
// exit at EOF; the kill covers a wedged connection.
func (t *sshTransport) Close() error {
	_ = t.stdin.Close()
	_ = t.stdout.Close()
	if t.cmd.Process != nil {
		_ = t.cmd.Process.Kill()
	}
	_ = t.cmd.Wait()
	return nil
}

// dialSSH starts the ssh subprocess running the responder script on
// userHost. Key-based auth only: the session has no terminal to prompt on.
func dialSSH(userHost string) (Transport, error) {
	cmd := exec.Command("ssh",
		"-p", strconv.Itoa(Port),
		"-o", "BatchMode=yes",
		"-o", "ConnectTimeout=5",
		"-o", "PreferredAuthentications=publickey",
		"-o", "PasswordAuthentication=no",
		"-o", "KbdInteractiveAuthentication=no",
		"-o", "GSSAPIAuthentication=no",
		userHost,
		"sh", "-lc", responderScript,
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ssh stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ssh stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ssh to %s: %w", userHost, err)
	}
	return &sshTransport{cmd: cmd, stdin: stdin, stdout: stdout}, nil
}
