package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "caseledger/pkg/domain-errors"
)

func TestParsePrincipal(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParsePrincipal("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts any non-empty value opaquely", func(t *testing.T) {
		p, err := ParsePrincipal("acct:alice@main")
		require.NoError(t, err)
		assert.Equal(t, Principal("acct:alice@main"), p)
		assert.False(t, p.IsNil())
	})
}

func TestParseCaseID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseCaseID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects non-numeric input", func(t *testing.T) {
		_, err := ParseCaseID("case-one")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects zero, the never-assigned ID", func(t *testing.T) {
		_, err := ParseCaseID("0")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects negative numbers", func(t *testing.T) {
		_, err := ParseCaseID("-1")
		require.Error(t, err)
	})

	t.Run("accepts one-based IDs", func(t *testing.T) {
		id, err := ParseCaseID("42")
		require.NoError(t, err)
		assert.Equal(t, CaseID(42), id)
		assert.Equal(t, "42", id.String())
	})
}
