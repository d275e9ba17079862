package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stash/internal/schema"
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

func TestValidateNilPredicate(t *testing.T) {
	assert.NoError(t, Validate(nil, taskEntity()))
}

func TestValidateCompare(t *testing.T) {
	e := taskEntity()

	assert.NoError(t, Validate(Eq("title", value.NewString("A")), e))
	assert.NoError(t, Validate(&Compare{Attr: "priority", Op: OpGe, Value: value.NewInt(3)}, e))

	// Int widens to float attributes
	assert.NoError(t, Validate(&Compare{Attr: "weight", Op: OpLt, Value: value.NewInt(2)}, e))

	// Float does not narrow to int attributes
	assert.Error(t, Validate(&Compare{Attr: "priority", Op: OpEq, Value: value.NewFloat(1.5)}, e))
}

func TestValidateUnknownAttribute(t *testing.T) {
	err := Validate(Eq("missing", value.NewString("x")), taskEntity())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestValidateKindMismatch(t *testing.T) {
	err := Validate(Eq("done", value.NewString("yes")), taskEntity())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kind")
}

func TestValidateNullComparisons(t *testing.T) {
	e := taskEntity()

	assert.NoError(t, Validate(&Compare{Attr: "title", Op: OpEq, Value: value.Null{}}, e))
	assert.NoError(t, Validate(&Compare{Attr: "title", Op: OpNe, Value: value.Null{}}, e))
	assert.Error(t, Validate(&Compare{Attr: "title", Op: OpLt, Value: value.Null{}}, e))
}

func TestValidateNested(t *testing.T) {
	e := taskEntity()

	pred := AllOf(
		Eq("done", value.NewBool(false)),
		AnyOf(
			&Compare{Attr: "priority", Op: OpGt, Value: value.NewInt(2)},
			&Not{Predicate: Eq("title", value.NewString("skip"))},
		),
	)
	assert.NoError(t, Validate(pred, e))

	bad := AllOf(
		Eq("done", value.NewBool(false)),
		AnyOf(Eq("nope", value.NewInt(1))),
	)
	assert.Error(t, Validate(bad, e))
}

func TestValidateSort(t *testing.T) {
	e := taskEntity()

	assert.NoError(t, ValidateSort(nil, e))
	assert.NoError(t, ValidateSort(Sort{Asc("priority"), Desc("title")}, e))
	assert.Error(t, ValidateSort(Sort{Asc("missing")}, e))
}
