package main

import (
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIFlagParsing(t *testing.T) {
	parser, err := kong.New(&CLI)
	require.NoError(t, err)

	_, err = parser.Parse([]string{"--db", "games.db", "--addr", ":9000", "--seed", "42", "-l", "debug"})
	require.NoError(t, err)

	assert.Equal(t, "games.db", CLI.DBPath)
	assert.Equal(t, ":9000", CLI.Addr)
	assert.Equal(t, "debug", CLI.LogLevel)
	assert.Equal(t, "kalooki.hcl", CLI.Config)
	require.NotNil(t, CLI.Seed)
	assert.EqualValues(t, 42, *CLI.Seed)

	_, err = parser.Parse([]string{"--db-path", "games.db"})
	assert.Error(t, err)
}
