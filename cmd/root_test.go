package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{
		"run", "scenarios", "cascade", "subgroups",
		"tornado", "psa", "threshold", "export",
		"runs", "serve", "config",
	}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "bim", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRunCommand_Flags(t *testing.T) {
	for _, name := range []string{"country", "scenario", "horizon", "no-offsets", "no-persistence", "no-events", "save"} {
		flag := runCmd.Flags().Lookup(name)
		assert.NotNil(t, flag, "run command should have --%s flag", name)
	}
}

func TestPSACommand_Flags(t *testing.T) {
	for _, name := range []string{"iterations", "seed", "confidence", "workers", "samples", "save"} {
		flag := psaCmd.Flags().Lookup(name)
		assert.NotNil(t, flag, "psa command should have --%s flag", name)
	}
}

func TestExportCommand_Flags(t *testing.T) {
	flag := exportCmd.Flags().Lookup("out")
	require.NotNil(t, flag)
	assert.Equal(t, "bim.xlsx", flag.DefValue)

	for _, name := range []string{"subgroups", "tornado", "psa"} {
		section := exportCmd.Flags().Lookup(name)
		require.NotNil(t, section, "export command should have --%s flag", name)
		assert.Equal(t, "true", section.DefValue)
	}
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestRunsCommand_HasSubcommands(t *testing.T) {
	cmds := runsCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	for _, name := range []string{"list", "show", "delete"} {
		assert.True(t, names[name], "runs should have subcommand %q", name)
	}
}
