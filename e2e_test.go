package snapshot_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/signadot/snapshot"
	"github.com/signadot/snapshot/ir"
	"github.com/signadot/snapshot/store"

	"github.com/stretchr/testify/require"
)

type user struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	CreatedAt string            `json:"createdAt"`
	Tags      []string          `json:"tags"`
	Attrs     map[string]string `json:"attrs,omitempty"`
	Friend    *user             `json:"friend"`
}

func newRun(t *testing.T, base string, opts ...snapshot.Option) *snapshot.Run {
	t.Helper()
	t.Setenv(snapshot.EnvUpdate, "")
	t.Setenv(snapshot.EnvBasePath, "")
	t.Setenv(snapshot.EnvConfig, "")
	r, err := snapshot.NewRun(append([]snapshot.Option{snapshot.WithBasePath(base)}, opts...)...)
	require.NoError(t, err)
	require.NoError(t, r.Begin())
	return r
}

func TestEndToEnd(t *testing.T) {
	base := t.TempDir()
	alice := user{
		ID:        "u1",
		Name:      "alice",
		CreatedAt: "2024-05-01T10:00:00Z",
		Tags:      []string{"admin"},
		Friend:    &user{ID: "u2", Name: "bob", CreatedAt: "2024-05-02T10:00:00Z"},
	}

	r := newRun(t, base)
	require.NoError(t, r.Expect(t, alice).Ignoring("createdAt", "friend.createdAt").ToMatchSnapshot())
	require.NoError(t, r.ExpectScenario(t, "pair", alice.Friend, map[string]int{"n": 1}).Ignoring("$..*").ToMatchSnapshot())
	require.NoError(t, r.End())

	path := filepath.Join(base, "snapshot.snap")
	d, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `snapshot.TestEndToEnd={
  "createdAt": "IGNORED",
  "friend": {
    "createdAt": "IGNORED",
    "id": "u2",
    "name": "bob"
  },
  "id": "u1",
  "name": "alice",
  "tags": [
    "admin"
  ]
}

snapshot.TestEndToEnd[pair]=[
  {
    "createdAt": "IGNORED",
    "friend": "IGNORED",
    "id": "IGNORED",
    "name": "IGNORED",
    "tags": "IGNORED"
  },
  {
    "n": "IGNORED"
  }
]
`, string(d))

	// a later run with different volatile fields still matches
	alice.CreatedAt = "2025-01-01T00:00:00Z"
	alice.Friend.CreatedAt = "2025-01-02T00:00:00Z"
	again := newRun(t, base)
	state, err := again.Expect(t, alice).Ignoring("createdAt", "friend.createdAt").Evaluate()
	require.NoError(t, err)
	require.Equal(t, snapshot.Matched, state)

	alice.Name = "alicia"
	state, err = again.ExpectScenario(t, "renamed", alice).Named("TestEndToEnd").Evaluate()
	require.NoError(t, err)
	require.Equal(t, snapshot.Recorded, state)
	require.Equal(t, []string{"snapshot.TestEndToEnd[pair]="}, again.Unused("snapshot"))
	require.NoError(t, again.End())

	st, err := store.Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, st.Len())
}

func TestEndToEndMismatch(t *testing.T) {
	base := t.TempDir()
	r := newRun(t, base)
	require.NoError(t, r.Expect(t, ir.FromMap(map[string]*ir.Node{"v": ir.FromInt(1)})).ToMatchSnapshot())
	require.NoError(t, r.End())

	again := newRun(t, base)
	err := again.Expect(t, map[string]int{"v": 2}).ToMatchSnapshot()
	require.ErrorIs(t, err, snapshot.ErrMismatch)
	var mm *snapshot.MismatchError
	require.ErrorAs(t, err, &mm)
	require.Equal(t, "{\n  \"v\": 1\n}", mm.Expected)
	require.Equal(t, "{\n  \"v\": 2\n}", mm.Actual)
	require.NoError(t, again.End())

	d, err := os.ReadFile(filepath.Join(base, "snapshot.snap"))
	require.NoError(t, err)
	require.Equal(t, "snapshot.TestEndToEndMismatch={\n  \"v\": 1\n}\n", string(d))

	updating := newRun(t, base, snapshot.WithUpdate(true))
	require.NoError(t, updating.Expect(t, map[string]int{"v": 2}).ToMatchSnapshot())
	require.NoError(t, updating.End())
	d, err = os.ReadFile(filepath.Join(base, "snapshot.snap"))
	require.NoError(t, err)
	require.Equal(t, "snapshot.TestEndToEndMismatch={\n  \"v\": 2\n}\n", string(d))
}

func TestEndToEndCycle(t *testing.T) {
	r := newRun(t, t.TempDir())
	a := &user{ID: "a"}
	a.Friend = a
	require.ErrorIs(t, r.Expect(t, a).ToMatchSnapshot(), snapshot.ErrCycle)
	require.NoError(t, r.End())
}
