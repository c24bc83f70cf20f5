package main

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeServerConfig(t *testing.T) string {
	t.Helper()
	balance, err := filepath.Abs(filepath.Join("..", "..", "configs"))
	require.NoError(t, err)
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	body := "database:\n  driver: sqlite\n  dsn: \"file:" + filepath.Join(dir, "db", "summon.db") + "\"\n" +
		"balance:\n  dir: " + balance + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestOddsCommand(t *testing.T) {
	out := execute(t, "--config", writeServerConfig(t), "odds", "--level", "20")
	assert.Contains(t, out, "level 20")
	assert.Contains(t, out, "MYTHIQUE")
	assert.Contains(t, out, "Capitaine")
}

func TestSimulateCommand(t *testing.T) {
	out := execute(t, "--config", writeServerConfig(t), "simulate", "--trials", "2000", "--seed", "7", "--target", "rare")
	assert.Contains(t, out, "2000 trials")
	assert.Contains(t, out, "summons to reach RARE")
}

func TestMigrateAndSeedCommands(t *testing.T) {
	cfgPath := writeServerConfig(t)
	execute(t, "--config", cfgPath, "migrate")
	seed, err := filepath.Abs(filepath.Join("..", "..", "configs", "seed", "reference.yaml"))
	require.NoError(t, err)
	execute(t, "--config", cfgPath, "seed", "--file", seed)
}

func TestListenClosesHTTPWhenGRPCFails(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	free, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	httpAddr := free.Addr().String()
	require.NoError(t, free.Close())

	h, g, err := listen(httpAddr, busy.Addr().String())
	require.Error(t, err)
	assert.Nil(t, h)
	assert.Nil(t, g)

	// the HTTP port was released
	again, err := net.Listen("tcp", httpAddr)
	require.NoError(t, err)
	again.Close()
}

func TestListenWithoutGRPC(t *testing.T) {
	h, g, err := listen("127.0.0.1:0", "")
	require.NoError(t, err)
	defer h.Close()
	assert.Nil(t, g)
}
