package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{"ask", "index", "scrape", "agent", "version"}

	registered := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}

	for _, name := range expected {
		assert.True(t, registered[name], "missing subcommand %s", name)
	}
}

func TestReadURLsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	content := "https://a.example.com/\n\n# comment\n  https://b.example.com/  \n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	urls, err := readURLsFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com/", "https://b.example.com/"}, urls)
}

func TestReadURLsFile_Missing(t *testing.T) {
	_, err := readURLsFile("/nonexistent/urls.txt")
	assert.Error(t, err)
}
