// Package clitest runs the secretcrypt command tree in tests.
package clitest

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/coder/secretcrypt/cli"
	"github.com/coder/secretcrypt/database/dbmem"
	"github.com/coder/serpent"
)

// New creates an invocation of the root command backed by a fresh
// in-memory store. The returned RootCmd can be reused with NewWithRoot to
// run further commands against the same store.
func New(t testing.TB, args ...string) (*serpent.Invocation, *cli.RootCmd) {
	t.Helper()
	root := &cli.RootCmd{Store: dbmem.New()}
	return NewWithRoot(t, root, args...), root
}

// NewWithRoot creates an invocation of root's command tree. Logs go to the
// test log; stdout is discarded until the caller replaces it.
func NewWithRoot(t testing.TB, root *cli.RootCmd, args ...string) *serpent.Invocation {
	t.Helper()
	cmd := root.Command()
	HandlersOK(t, cmd)
	inv := cmd.Invoke(args...)
	inv.Stdin = strings.NewReader("")
	inv.Stdout = &bytes.Buffer{}
	inv.Stderr = &logWriter{t: t}
	return inv
}

// logWriter forwards everything written to it to t.Log, one call per line.
type logWriter struct {
	t   testing.TB
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Keep the partial line for the next write.
			_, _ = w.buf.WriteString(line)
			break
		}
		w.t.Log(strings.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}
