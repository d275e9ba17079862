package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stash/internal/schema"
	"github.com/roach88/stash/internal/store"
	"github.com/roach88/stash/internal/value"
)

func taskEntity() *schema.Entity {
	return &schema.Entity{
		Name: "Task",
		Attributes: []schema.Attribute{
			{Name: "title", Kind: schema.KindString},
			{Name: "done", Kind: schema.KindBool},
			{Name: "priority", Kind: schema.KindInt},
			{Name: "weight", Kind: schema.KindFloat},
		},
	}
}

func TestApplyPayloadSubset(t *testing.T) {
	rec := store.NewRecord("Task")
	rec.Set("title", value.NewString("old"))
	rec.Set("priority", value.NewInt(1))

	applied, err := applyPayload(taskEntity(), rec, Payload{
		"title": value.NewString("new"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	assert.True(t, value.Equal(rec.Get("title"), value.String("new")))
	// Attributes not named in the payload stay put
	assert.True(t, value.Equal(rec.Get("priority"), value.Int(1)))
}

func TestApplyPayloadIgnoresUnknownKeys(t *testing.T) {
	rec := store.NewRecord("Task")

	applied, err := applyPayload(taskEntity(), rec, Payload{
		"unknown": value.NewString("x"),
	})
	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.Empty(t, rec.Attrs)
}

func TestApplyPayloadKindMismatch(t *testing.T) {
	rec := store.NewRecord("Task")

	_, err := applyPayload(taskEntity(), rec, Payload{
		"done": value.NewString("yes"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "done")
}

func TestApplyPayloadWidensIntToFloat(t *testing.T) {
	rec := store.NewRecord("Task")

	applied, err := applyPayload(taskEntity(), rec, Payload{
		"weight": value.NewInt(2),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.True(t, value.Equal(rec.Get("weight"), value.Float(2)))
}

func TestApplyPayloadNullClears(t *testing.T) {
	rec := store.NewRecord("Task")
	rec.Set("title", value.NewString("A"))

	applied, err := applyPayload(taskEntity(), rec, Payload{
		"title": value.Null{},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	_, isNull := rec.Get("title").(value.Null)
	assert.True(t, isNull)
}

func TestApplyPayloadNormalizesStrings(t *testing.T) {
	rec := store.NewRecord("Task")

	// Combining-sequence "e" + U+0301 normalizes to precomposed form
	_, err := applyPayload(taskEntity(), rec, Payload{
		"title": value.String("café"),
	})
	require.NoError(t, err)
	assert.True(t, value.Equal(rec.Get("title"), value.String("café")))
}
