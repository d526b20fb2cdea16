package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/grounded"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(t.Context()))
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	out := execute(t, "version")
	assert.Equal(t, "grounded version "+strings.TrimSpace(grounded.Version)+"\n", out)
}

func TestTopicsCommand(t *testing.T) {
	out := execute(t, "topics")
	assert.Contains(t, out, "1. langgraph")
	assert.Contains(t, out, "triggers: langgraph, guided project")
}

func TestAskCommand_RequiresQuestion(t *testing.T) {
	rootCmd.SetArgs([]string{"ask"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	assert.Error(t, rootCmd.ExecuteContext(t.Context()))
}
