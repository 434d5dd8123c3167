// Daemon round trip: a serve process and client invocations sharing it.
package integration

import (
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServe launches "doublets serve" on a socket inside the env and waits
// for the socket to appear. The daemon is stopped with SIGTERM on cleanup.
func startServe(t *testing.T, env *TestEnv, store string) string {
	t.Helper()

	socket := filepath.Join(env.TempDir, "doublets.sock")
	cmd := exec.Command(doubletsBin,
		"--config-dir", env.Config,
		"--data-dir", env.DataDir,
		"--store", store,
		"--socket", socket,
		"serve",
	)
	require.NoError(t, cmd.Start(), "start serve")

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	t.Cleanup(func() {
		cmd.Process.Signal(syscall.SIGTERM)
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			cmd.Process.Kill()
			t.Error("serve did not stop on SIGTERM")
		}
	})

	deadline := time.Now().Add(10 * time.Second)
	for {
		if _, err := os.Stat(socket); err == nil {
			return socket
		}
		select {
		case err := <-done:
			t.Fatalf("serve exited early: %v", err)
		default:
		}
		require.False(t, time.Now().After(deadline), "daemon socket never appeared")
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDaemonRoundTrip(t *testing.T) {
	env := NewTestEnv(t)
	socket := startServe(t, env, "memory")

	result := env.MustRunDoublets("--store", "daemon", "--socket", socket, "create", "0", "0")
	assert.Equal(t, "(1: 0 0)", strings.TrimSpace(result.Stdout))

	// A second invocation is a separate process; the memory store lives in
	// the daemon, so the link is still there.
	result = env.MustRunDoublets("--store", "daemon", "--socket", socket, "read", "1")
	assert.Equal(t, "(1: 0 0)", strings.TrimSpace(result.Stdout))

	result = env.MustRunDoublets("--store", "daemon", "--socket", socket, "count")
	assert.Equal(t, "(count: 1)", strings.TrimSpace(result.Stdout))
}

func TestDaemonSqliteBacked(t *testing.T) {
	env := NewTestEnv(t)
	socket := startServe(t, env, "sqlite")

	env.MustRunDoublets("--store", "daemon", "--socket", socket, "create", "0", "0")
	env.MustRunDoublets("--store", "daemon", "--socket", socket, "create", "1", "1")

	result := env.MustRunDoublets("--store", "daemon", "--socket", socket, "list")
	assert.Equal(t, "(1: 0 0)\n(2: 1 1)", strings.TrimSpace(result.Stdout))
}

func TestDaemonStopsWithConnectedClient(t *testing.T) {
	env := NewTestEnv(t)
	socket := startServe(t, env, "memory")

	// Hold a raw connection open so a handler is parked reading from it,
	// then rely on the cleanup's SIGTERM: serve must still exit within its
	// window instead of hanging on the idle connection.
	conn, err := net.Dial("unix", socket)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	result := env.MustRunDoublets("--store", "daemon", "--socket", socket, "create", "0", "0")
	assert.Equal(t, "(1: 0 0)", strings.TrimSpace(result.Stdout))
}

func TestDaemonUnreachable(t *testing.T) {
	env := NewTestEnv(t)

	socket := filepath.Join(env.TempDir, "absent.sock")
	result := env.RunDoublets("--store", "daemon", "--socket", socket, "read", "1")
	assert.Equal(t, 2, result.ExitCode, "stderr: %s", result.Stderr)
}
