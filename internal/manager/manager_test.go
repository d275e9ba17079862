package manager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stash/internal/query"
	"github.com/roach88/stash/internal/testutil"
	"github.com/roach88/stash/internal/value"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := New(Options{
		Source:  testutil.FixedSource{Name: "tasks"},
		Catalog: testutil.NewCatalog(t),
		Dir:     t.TempDir(),
	})
	t.Cleanup(func() { m.Close() })
	return m
}

func taskPayload(title string, done bool) Payload {
	return Payload{
		"title": value.NewString(title),
		"done":  value.NewBool(done),
	}
}

func TestInsertThenFetch(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	rec, err := m.Insert(ctx, "Task", taskPayload("A", false), true)
	require.NoError(t, err)
	require.NotNil(t, rec)

	records, err := m.Fetch(ctx, "Task", query.Eq("done", value.NewBool(false)), nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
	assert.True(t, value.Equal(records[0].Get("title"), value.String("A")))
}

func TestInsertAlwaysCreates(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	// Two identical inserts yield two records - duplicates permitted
	_, err := m.Insert(ctx, "Task", taskPayload("A", false), true)
	require.NoError(t, err)
	_, err = m.Insert(ctx, "Task", taskPayload("A", false), true)
	require.NoError(t, err)

	records, err := m.Fetch(ctx, "Task", nil, nil)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestInsertIfAbsentIsIdempotent(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	pred := query.Eq("title", value.NewString("A"))

	first, err := m.InsertIfAbsent(ctx, "Task", pred, taskPayload("A", false), true)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := m.InsertIfAbsent(ctx, "Task", pred, taskPayload("A", false), true)
	require.NoError(t, err)
	assert.Nil(t, second, "second insert should be skipped")

	records, err := m.Fetch(ctx, "Task", pred, nil)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestInsertIfAbsentQueryFailure(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	// A predicate over an unknown attribute fails the duplicate check;
	// that failure is surfaced, not treated as "duplicate exists".
	pred := query.Eq("missing", value.NewString("A"))
	rec, err := m.InsertIfAbsent(ctx, "Task", pred, taskPayload("A", false), true)
	assert.Nil(t, rec)
	require.Error(t, err)
	assert.True(t, IsQueryFailure(err))

	// And no mutation happened
	records, err := m.Fetch(ctx, "Task", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestUpdatePartialPayload(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	rec, err := m.Insert(ctx, "Task", Payload{
		"title":    value.NewString("A"),
		"done":     value.NewBool(false),
		"priority": value.NewInt(3),
	}, true)
	require.NoError(t, err)

	// Only done is named; title and priority must be untouched
	updated, err := m.Update(ctx, rec, Payload{"done": value.NewBool(true)}, true)
	require.NoError(t, err)
	require.NotNil(t, updated)

	records, err := m.Fetch(ctx, "Task", nil, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, value.Equal(records[0].Get("title"), value.String("A")))
	assert.True(t, value.Equal(records[0].Get("priority"), value.Int(3)))
	assert.True(t, value.Equal(records[0].Get("done"), value.Bool(true)))
}

func TestUpdateEmptyPayloadIsIdentity(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	rec, err := m.Insert(ctx, "Task", taskPayload("A", false), true)
	require.NoError(t, err)

	updated, err := m.Update(ctx, rec, Payload{}, false)
	require.NoError(t, err)
	assert.Same(t, rec, updated)
	assert.NoError(t, m.Save(ctx))
}

func TestUpdateIgnoresUnknownKeys(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	rec, err := m.Insert(ctx, "Task", taskPayload("A", false), true)
	require.NoError(t, err)

	// Unknown keys are no-ops, not errors
	updated, err := m.Update(ctx, rec, Payload{
		"nonexistent": value.NewString("x"),
		"also_not":    value.NewInt(1),
	}, true)
	require.NoError(t, err)
	assert.True(t, value.Equal(updated.Get("title"), value.String("A")))
}

func TestFetchSortOrdering(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	for _, task := range []struct {
		title    string
		priority int64
	}{
		{"B", 2}, {"A", 2}, {"C", 1},
	} {
		_, err := m.Insert(ctx, "Task", Payload{
			"title":    value.NewString(task.title),
			"priority": value.NewInt(task.priority),
		}, false)
		require.NoError(t, err)
	}
	require.NoError(t, m.Save(ctx))

	// Leading key priority desc, ties broken by title asc
	records, err := m.Fetch(ctx, "Task", nil, query.Sort{
		query.Desc("priority"),
		query.Asc("title"),
	})
	require.NoError(t, err)
	require.Len(t, records, 3)

	titles := make([]string, len(records))
	for i := range records {
		titles[i] = string(records[i].Get("title").(value.String))
	}
	assert.Equal(t, []string{"A", "B", "C"}, titles)
}

func TestDeleteThenFetch(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	rec, err := m.Insert(ctx, "Task", taskPayload("A", false), true)
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, rec, true))

	records, err := m.Fetch(ctx, "Task", query.Eq("done", value.NewBool(false)), nil)
	require.NoError(t, err)
	assert.NotNil(t, records, "existing collection fetches as empty, not absent")
	assert.Empty(t, records)
}

func TestDeleteAll(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := m.Insert(ctx, "Task", taskPayload("A", false), false)
		require.NoError(t, err)
	}
	require.NoError(t, m.Save(ctx))

	n, err := m.DeleteAll(ctx, "Task", true)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	records, err := m.Fetch(ctx, "Task", nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestFetchQueryFailureIsDistinct(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	// Unknown entity: a failed query, not an empty result
	records, err := m.Fetch(ctx, "Nope", nil, nil)
	assert.Nil(t, records)
	require.Error(t, err)
	assert.True(t, IsQueryFailure(err))
}

func TestSaveCoalescesWrites(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	// Three deferred inserts, one save
	for i := 0; i < 3; i++ {
		_, err := m.Insert(ctx, "Task", taskPayload("A", false), false)
		require.NoError(t, err)
	}
	require.NoError(t, m.Save(ctx))

	records, err := m.Fetch(ctx, "Task", nil, nil)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestAbsentSourceDisablesOperations(t *testing.T) {
	m := New(Options{
		Source:  testutil.AbsentSource{},
		Catalog: testutil.NewCatalog(t),
		Dir:     t.TempDir(),
	})
	defer m.Close()
	ctx := context.Background()

	rec, err := m.Insert(ctx, "Task", taskPayload("A", false), true)
	assert.Nil(t, rec)
	assert.NoError(t, err)

	records, err := m.Fetch(ctx, "Task", nil, nil)
	assert.Nil(t, records, "absent, not empty")
	assert.NoError(t, err)

	n, err := m.DeleteAll(ctx, "Task", true)
	assert.Zero(t, n)
	assert.NoError(t, err)

	assert.NoError(t, m.Save(ctx))
	assert.Error(t, m.ResolutionError())
}

func TestUnknownSchemaNameIsTerminal(t *testing.T) {
	calls := 0
	m := New(Options{
		Source: SchemaSourceFunc(func() (string, bool) {
			calls++
			return "never_registered", true
		}),
		Catalog: testutil.NewCatalog(t),
		Dir:     t.TempDir(),
	})
	defer m.Close()
	ctx := context.Background()

	_, err := m.Fetch(ctx, "Task", nil, nil)
	assert.NoError(t, err)
	_, err = m.Fetch(ctx, "Task", nil, nil)
	assert.NoError(t, err)

	// Resolution is attempted exactly once; Absent is terminal
	assert.Equal(t, 1, calls)
}

func TestNilSourceIsAbsent(t *testing.T) {
	m := New(Options{Catalog: testutil.NewCatalog(t), Dir: t.TempDir()})
	defer m.Close()

	rec, err := m.Insert(context.Background(), "Task", taskPayload("A", false), true)
	assert.Nil(t, rec)
	assert.NoError(t, err)
}

func TestInsertUnknownEntity(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Insert(context.Background(), "Nope", Payload{}, false)
	require.Error(t, err)
}
