package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/raniellyferreira/linekv"
)

func startKV(t *testing.T) *linekv.KV {
	t.Helper()

	kv, err := linekv.New(
		linekv.WithAddr("127.0.0.1:0"),
		linekv.WithLogger(linekv.NewZapLogger(zap.NewNop())),
	)
	require.NoError(t, err)
	require.NoError(t, kv.Start(context.Background()))
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestInteractiveSession(t *testing.T) {
	kv := startKV(t)

	stdin := strings.NewReader("SET name John Smith\nGet name\nFOO\nDELETE name\nGET name\n")
	var stdout, stderr bytes.Buffer

	cmd := newRootCommand(stdin, &stdout, &stderr)
	cmd.SetArgs([]string{"--addr", kv.Addr()})
	require.NoError(t, cmd.Execute())

	out := stdout.String()
	assert.Contains(t, out, "Successfully connected to "+kv.Addr())
	assert.Contains(t, out, "> Server response: Ok\n")
	assert.Contains(t, out, "> Server response: John Smith\n")
	assert.Contains(t, out, "> Server response: Error command\n")
	assert.Contains(t, out, "> Server response: \n")
	assert.Contains(t, out, "Input closed. Exiting.")
	assert.Empty(t, stderr.String())
}

func TestConnectFailure(t *testing.T) {
	kv := startKV(t)
	addr := kv.Addr()
	require.NoError(t, kv.Close())

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(strings.NewReader("GET a\n"), &stdout, &stderr)
	cmd.SetArgs([]string{"--addr", addr})

	err := cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, stderr.String(), "Failed to connect")
}

func TestRunScript(t *testing.T) {
	kv := startKV(t)

	path := filepath.Join(t.TempDir(), "script.lua")
	require.NoError(t, os.WriteFile(path, []byte(`
		kv.set(ARGV[1], ARGV[2])
		return kv.get(ARGV[1])
	`), 0o600))

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(strings.NewReader(""), &stdout, &stderr)
	cmd.SetArgs([]string{"--addr", kv.Addr(), "--script", path, "greeting", "hello"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "hello\n", stdout.String())
}

func TestRunScriptError(t *testing.T) {
	kv := startKV(t)

	path := filepath.Join(t.TempDir(), "bad.lua")
	require.NoError(t, os.WriteFile(path, []byte(`return kv.call("NOPE")`), 0o600))

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(strings.NewReader(""), &stdout, &stderr)
	cmd.SetArgs([]string{"--addr", kv.Addr(), "--script", path})
	assert.Error(t, cmd.Execute())
}
