package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPromote_RequiresEmail(t *testing.T) {
	_, err := run(t, "promote", "--role", "staff")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--email")
}

func TestPromote_RejectsUnknownRole(t *testing.T) {
	_, err := run(t, "promote", "--email", "a@example.com", "--role", "owner")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown role "owner"`)
}

func TestRoot_ListsCommands(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	for _, name := range []string{"migrate", "promote", "queue"} {
		assert.Contains(t, out, name)
	}
}
