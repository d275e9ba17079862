package manager

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryErrorClassification(t *testing.T) {
	base := errors.New("disk on fire")
	qe := &QueryError{Entity: "Task", Err: base}

	assert.True(t, IsQueryFailure(qe))
	assert.False(t, IsCommitFailure(qe))
	assert.ErrorIs(t, qe, base)
	assert.Contains(t, qe.Error(), "Task")

	// Classification survives wrapping
	wrapped := fmt.Errorf("fetching: %w", qe)
	assert.True(t, IsQueryFailure(wrapped))
}

func TestCommitErrorClassification(t *testing.T) {
	base := errors.New("database is locked")
	ce := &CommitError{Err: base}

	assert.True(t, IsCommitFailure(ce))
	assert.False(t, IsQueryFailure(ce))
	assert.ErrorIs(t, ce, base)

	wrapped := fmt.Errorf("saving: %w", ce)
	assert.True(t, IsCommitFailure(wrapped))
}

func TestPlainErrorsAreNeither(t *testing.T) {
	err := errors.New("something else")
	assert.False(t, IsQueryFailure(err))
	assert.False(t, IsCommitFailure(err))
}
