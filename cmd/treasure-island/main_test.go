package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, input string, args ...string) string {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	require.Equal(t, "treasure-island dev\n", runCmd(t, "", "version"))
}

func TestPlaysToVictory(t *testing.T) {
	out := runCmd(t, "R\n\nL\nW\nY\n\n", "--no-color", "--restart-delay", "0s")
	require.Contains(t, out, "You fall into a hole. Game Over!")
	require.Contains(t, out, "YOU WIN THE TREASURE")
	require.NotContains(t, out, "Goodbye!")
}

func TestQuitsOnEndOfInput(t *testing.T) {
	out := runCmd(t, "L\n", "--no-color")
	require.Contains(t, out, "Goodbye!")
}

func TestRejectsArguments(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"extra"})
	require.Error(t, cmd.Execute())
}
