package cmd

import (
	"testing"

	"github.com/huangsam/covpost/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"publish", "render", "history", "mcp", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	sub := map[string]bool{}
	for _, c := range historyCmd.Commands() {
		sub[c.Name()] = true
	}
	for _, want := range []string{"status", "export", "clear", "migrate"} {
		assert.True(t, sub[want], "missing history command %s", want)
	}
}

func TestPublishArgs(t *testing.T) {
	assert.NoError(t, publishCmd.Args(publishCmd, []string{"a", "b", "c", "d", "e", "f"}))
	assert.Error(t, publishCmd.Args(publishCmd, []string{"a", "b", "c", "d", "e", "f", "g"}))
	assert.Error(t, renderCmd.Args(renderCmd, []string{"a", "b"}))
}

func TestReportPathArg(t *testing.T) {
	in := &contract.ConfigRawInput{ReportPathStr: "from-config.xml"}
	reportPathArg(in, nil)
	assert.Equal(t, "from-config.xml", in.ReportPathStr)

	reportPathArg(in, []string{"report.xml"})
	assert.Equal(t, "report.xml", in.ReportPathStr)
}

func TestFlagsBound(t *testing.T) {
	for _, name := range []string{"token", "api-url", "repository", "branch", "thread-url", "dry-run", "update-existing"} {
		require.NotNil(t, publishCmd.Flags().Lookup(name), name)
	}
	for _, name := range []string{"changed-file", "repo-path", "base-ref", "target-ref"} {
		require.NotNil(t, renderCmd.Flags().Lookup(name), name)
	}
	require.NotNil(t, historyMigrateCmd.Flags().Lookup("target-version"))
}
