package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/journal"
)

// browseSession records one browse session into a fresh journal.
func browseSession(t *testing.T, script string) string {
	t.Helper()
	api := startMock(t)
	path := filepath.Join(t.TempDir(), "journal.db")
	_, err := execute(t, script, "browse", "--api-url", api, "--journal", path)
	require.NoError(t, err)
	return path
}

func TestTrace_Text(t *testing.T) {
	path := browseSession(t, "check brand Acme\nquit\n")

	out, err := execute(t, "", "trace", "--journal", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Trace for session: ")
	assert.Contains(t, out, "=== Timeline ===")
	assert.Contains(t, out, "  [1] QRY _page=1&_limit=9 (load, applied, 9 of 20)")
	assert.Contains(t, out, `  [2] EVT filter-changed {"filter":"brand=acme","filterName":"brand","isActive":true}`)
	assert.Contains(t, out, `  [3] EVT filters-changed ["brand=acme"]`)
	assert.Contains(t, out, "  [4] QRY _page=1&_limit=9&brand=acme (filters-changed, applied, 7 of 7)")
	assert.Contains(t, out, "  Events:  2")
	assert.Contains(t, out, "  Queries: 2 (applied 2, stale 0, failed 0, pending 0)")
}

func TestTrace_JSONWithEventFilter(t *testing.T) {
	path := browseSession(t, "next\nprev\nquit\n")

	out, err := execute(t, "", "trace", "--journal", path, "--event", "page-changed", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status  string      `json:"status"`
		Session string      `json:"session"`
		Data    TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Session)
	require.Len(t, resp.Data.Timeline, 2)
	assert.Equal(t, float64(1), resp.Data.Timeline[0].Payload)
	assert.Equal(t, float64(0), resp.Data.Timeline[1].Payload)
	assert.Equal(t, 3, resp.Data.Stats.Queries, "stats cover the whole session")
}

func TestTrace_ListAndSelectSession(t *testing.T) {
	path := browseSession(t, "quit\n")

	jr, err := journal.Open(path)
	require.NoError(t, err)
	sessions, err := jr.Sessions(context.Background())
	require.NoError(t, err)
	require.NoError(t, jr.Close())
	require.Len(t, sessions, 1)

	out, err := execute(t, "", "trace", "--journal", path, "--list")
	require.NoError(t, err)
	assert.Contains(t, out, sessions[0].ID)
	assert.Contains(t, out, "page size 9")

	out, err = execute(t, "", "trace", "--journal", path, "--session", sessions[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Trace for session: "+sessions[0].ID)

	_, err = execute(t, "", "trace", "--journal", path, "--session", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not found: nope")
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestTrace_Errors(t *testing.T) {
	_, err := execute(t, "", "trace", "--journal", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "journal not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "", "trace", "--journal", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no journal configured")

	_, err = execute(t, "", "trace", "--event", "cart-opened")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown event "cart-opened"`)

	empty := filepath.Join(t.TempDir(), "empty.db")
	jr, err := journal.Open(empty)
	require.NoError(t, err)
	require.NoError(t, jr.Close())
	_, err = execute(t, "", "trace", "--journal", empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "journal has no sessions")
}
