package dbutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFinalizeRebindsAndSwapsLimit(t *testing.T) {
	query, args := Finalize("SELECT a FROM t WHERE b = ? LIMIT ?,?", []interface{}{"x", 20, 10})
	require.Equal(t, "SELECT a FROM t WHERE b = $1 LIMIT $2 OFFSET $3", query)
	require.Equal(t, []interface{}{"x", 10, 20}, args)
}

func TestBuildSelectWithInCondition(t *testing.T) {
	query, args, err := BuildSelect("pdfdata", map[string]interface{}{
		"pdf_name in": InValues([]string{"a", "b"}),
	}, []string{"pdf_name", "text_vectors"})
	require.NoError(t, err)
	require.Contains(t, query, "$1")
	require.Contains(t, query, "$2")
	require.NotContains(t, query, "?")
	require.Equal(t, []interface{}{"a", "b"}, args)
}
