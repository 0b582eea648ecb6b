package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"name=Tom Hanks", "query=a=b", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":  "Tom Hanks",
		"query": "a=b",
		"empty": "",
	}, params)

	params, err = parseParams(nil)
	require.NoError(t, err)
	assert.Empty(t, params)
}

func TestParseParamsErrors(t *testing.T) {
	for _, pair := range []string{"novalue", "=value"} {
		t.Run(pair, func(t *testing.T) {
			_, err := parseParams([]string{pair})
			assert.ErrorContains(t, err, "want key=value")
		})
	}
}

func TestGraphRequiresQuery(t *testing.T) {
	rootCmd.SetArgs([]string{"graph"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := Execute()
	assert.ErrorContains(t, err, "--query is required")
}

func TestRootHelpDescribesRawOutput(t *testing.T) {
	assert.Contains(t, rootCmd.Long, "raw graph inspector")
	assert.Contains(t, graphCmd.Short, "nodes and edges")
}
