package policy

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "policy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	assert.NoError(t, s2.Close())
}

func TestGetPolicyMissingRowYieldsDefaults(t *testing.T) {
	store := openTestStore(t)
	snap, err := store.GetPolicy(context.Background(), "t1", "a1")
	require.NoError(t, err)
	assert.Equal(t, DefaultSnapshot(), snap)
}

func TestSetGetPolicyRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	want := Snapshot{
		MaxDepth:             4,
		MaxFanout:            8,
		MaxChildrenTotal:     40,
		AllowedScopes:        []string{"read", "write"},
		EnforcePublishedOnly: true,
	}
	require.NoError(t, store.SetPolicy(ctx, "t1", "a1", want))

	got, err := store.GetPolicy(ctx, "t1", "a1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSetPolicyUpsert(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := DefaultSnapshot()
	require.NoError(t, store.SetPolicy(ctx, "t1", "a1", first))

	second := Snapshot{MaxDepth: 9, MaxFanout: 9, MaxChildrenTotal: 9}
	require.NoError(t, store.SetPolicy(ctx, "t1", "a1", second))

	got, err := store.GetPolicy(ctx, "t1", "a1")
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestPolicyIsolatedPerTenant(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetPolicy(ctx, "t1", "a1", Snapshot{MaxDepth: 9, MaxFanout: 9, MaxChildrenTotal: 9}))

	other, err := store.GetPolicy(ctx, "t2", "a1")
	require.NoError(t, err)
	assert.Equal(t, DefaultSnapshot(), other)
}

func TestAllowlistEmptyByDefault(t *testing.T) {
	store := openTestStore(t)
	set, err := store.GetAllowlist(context.Background(), "t1", "a1")
	require.NoError(t, err)
	assert.True(t, set.Empty())
}

func TestAllowlistRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddAllowlistEntry(ctx, "t1", "a1", "target-1", ""))
	require.NoError(t, store.AddAllowlistEntry(ctx, "t1", "a1", "", "helper"))
	// Duplicate insert is ignored.
	require.NoError(t, store.AddAllowlistEntry(ctx, "t1", "a1", "target-1", ""))

	set, err := store.GetAllowlist(ctx, "t1", "a1")
	require.NoError(t, err)
	assert.False(t, set.Empty())
	assert.True(t, set.Contains("target-1", ""))
	assert.True(t, set.Contains("", "helper"))
	assert.False(t, set.Contains("other", "other"))
}

func TestResolveAgentsByIDAndSlug(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutAgent(ctx, "t1", Agent{ID: "a1", Slug: "alpha", Name: "Alpha", Published: true}))
	require.NoError(t, store.PutAgent(ctx, "t1", Agent{ID: "a2", Slug: "beta", Name: "Beta"}))
	require.NoError(t, store.PutAgent(ctx, "t2", Agent{ID: "a3", Slug: "gamma", Name: "Gamma", Published: true}))

	agents, err := store.ResolveAgents(ctx, "t1", []string{"a1"}, []string{"beta"})
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "a1", agents[0].ID)
	assert.True(t, agents[0].Published)
	assert.Equal(t, "a2", agents[1].ID)
	assert.False(t, agents[1].Published)
}

func TestResolveAgentsNoRefs(t *testing.T) {
	store := openTestStore(t)
	agents, err := store.ResolveAgents(context.Background(), "t1", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, agents)
}

func TestResolveAgentsUnmatchedProduceNoRows(t *testing.T) {
	store := openTestStore(t)
	agents, err := store.ResolveAgents(context.Background(), "t1", []string{"ghost"}, nil)
	require.NoError(t, err)
	assert.Empty(t, agents)
}

func TestPutAgentUpsert(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutAgent(ctx, "t1", Agent{ID: "a1", Slug: "alpha", Name: "Alpha"}))
	require.NoError(t, store.PutAgent(ctx, "t1", Agent{ID: "a1", Slug: "alpha-2", Name: "Alpha", Published: true}))

	agents, err := store.ResolveAgents(ctx, "t1", []string{"a1"}, nil)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "alpha-2", agents[0].Slug)
	assert.True(t, agents[0].Published)
}

func TestFindAgentPrefersID(t *testing.T) {
	inputs := &Inputs{Agents: []Agent{
		{ID: "a1", Slug: "shared"},
		{ID: "a2", Slug: "shared"},
	}}
	got, ok := inputs.FindAgent("a2", "shared")
	require.True(t, ok)
	assert.Equal(t, "a2", got.ID)

	got, ok = inputs.FindAgent("", "shared")
	require.True(t, ok)
	assert.Equal(t, "a1", got.ID)

	_, ok = inputs.FindAgent("ghost", "")
	assert.False(t, ok)
}

func TestAllowlistSetNilSafety(t *testing.T) {
	var set *AllowlistSet
	assert.True(t, set.Empty())
	assert.False(t, set.Contains("a", "b"))
}
