package commandmanager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/steelcutops/snapstate/common"
)

type MockSSHClient struct {
	dialError error
}

func (m *MockSSHClient) Dial(network, addr string, config *ssh.ClientConfig, timeout time.Duration) (*ssh.Client, error) {
	return nil, m.dialError
}

func TestRunLocal(t *testing.T) {
	manager := UnixCommandManager{Hostname: "localhost"}

	result, err := manager.RunLocal(context.Background(), CommandConfig{
		Command: "echo",
		Args:    []string{"hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", result.STDOUT)
	assert.True(t, result.Success())
}

func TestRunLocalNonZeroExitIsNotAnError(t *testing.T) {
	manager := UnixCommandManager{Hostname: "localhost"}

	result, err := manager.RunLocal(context.Background(), CommandConfig{
		Command: "sh",
		Args:    []string{"-c", "echo boom >&2; exit 3"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "boom\n", result.STDERR)
	assert.False(t, result.Success())
}

func TestRunLocalForcesCLocale(t *testing.T) {
	manager := UnixCommandManager{Hostname: "localhost"}

	result, err := manager.RunLocal(context.Background(), CommandConfig{
		Command: "sh",
		Args:    []string{"-c", "echo $LC_ALL $LANG $EXTRA"},
		Env:     []string{"EXTRA=yes"},
	})
	require.NoError(t, err)
	assert.Equal(t, "C C yes\n", result.STDOUT)
}

func TestRunLocalCancelled(t *testing.T) {
	manager := UnixCommandManager{Hostname: "localhost"}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := manager.RunLocal(ctx, CommandConfig{Command: "sleep", Args: []string{"5"}})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCommandLine(t *testing.T) {
	argv := commandLine(CommandConfig{Command: "snap", Args: []string{"install", "hello"}})
	assert.Equal(t, []string{
		"env", "LANG=C", "LC_ALL=C", "LC_MESSAGES=C", "LC_CTYPE=C", "snap", "install", "hello",
	}, argv)

	argv = commandLine(CommandConfig{Command: "snap", Args: []string{"refresh"}, Sudo: true})
	assert.Equal(t, []string{"sudo", "-S", "-p", ""}, argv[:4])
	assert.Equal(t, "env", argv[4])
	assert.Equal(t, []string{"snap", "refresh"}, argv[len(argv)-2:])
}

func TestIsLocal(t *testing.T) {
	manager := UnixCommandManager{Hostname: "localhost"}
	assert.True(t, manager.isLocal())

	manager.Hostname = ""
	assert.True(t, manager.isLocal())

	manager.Hostname = "example.com"
	assert.False(t, manager.isLocal())
}

func TestFileExistsLocal(t *testing.T) {
	manager := UnixCommandManager{Hostname: "localhost"}
	path := filepath.Join(t.TempDir(), "snap")

	exists, err := manager.FileExists(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	exists, err = manager.FileExists(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRunRemoteDialError(t *testing.T) {
	manager := UnixCommandManager{
		Hostname:  "remote",
		SSHClient: &MockSSHClient{dialError: errors.New("mock dial error")},
		Credentials: common.Credentials{
			User:     "user",
			Password: "password",
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	_, err := manager.RunRemote(context.Background(), CommandConfig{Command: "ls"})
	require.Error(t, err)
	assert.Equal(t, "mock dial error", err.Error())
}

func TestRunRemoteWithoutClient(t *testing.T) {
	manager := UnixCommandManager{Hostname: "remote"}

	_, err := manager.Run(context.Background(), CommandConfig{Command: "ls"})
	assert.EqualError(t, err, "SSHClient is not initialized")
}

func TestCheckSudo(t *testing.T) {
	assert.NoError(t, checkSudo(CommandResult{}))
	assert.EqualError(t, checkSudo(CommandResult{STDERR: "Sorry, try again.\nsudo: 1 incorrect password attempt"}),
		"sudo: incorrect password provided")
	assert.EqualError(t, checkSudo(CommandResult{STDERR: "bob is not in the sudoers file."}),
		"sudo: user is not in the sudoers file")
}
