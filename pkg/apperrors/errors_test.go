package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingDependencyError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("export flow: %w", &MissingDependencyError{Kind: DependencyLexicon, Name: "Greetings"})

	assert.True(t, errors.Is(err, ErrMissingDependency))
	assert.False(t, errors.Is(err, ErrUnknownResourceType))

	var depErr *MissingDependencyError
	if assert.True(t, errors.As(err, &depErr)) {
		assert.Equal(t, "Greetings", depErr.Name)
		assert.Equal(t, DependencyLexicon, depErr.Kind)
	}
}

func TestMissingDependencyError_Message(t *testing.T) {
	err := &MissingDependencyError{Kind: DependencyAttachedFlow, Name: "Checkout", ResourceID: "5c9e1f4b8d1e2a0012345678"}
	assert.Equal(t, `attached flow "Checkout" referenced by 5c9e1f4b8d1e2a0012345678 is not in the dependency map`, err.Error())

	err = &MissingDependencyError{Kind: DependencyLexicon, Name: "Cities"}
	assert.Equal(t, `lexicon "Cities" is not in the dependency map`, err.Error())
}
