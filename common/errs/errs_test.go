package errs

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKind(t *testing.T) {
	err := errors.Wrap(NotFound, "transaction 1234")
	assert.True(t, errors.Is(err, NotFound))
	assert.False(t, errors.Is(err, Unavailable))
	assert.Equal(t, "transaction 1234: Not Found", err.Error())
}

func TestPublicError(t *testing.T) {
	t.Run("new", func(t *testing.T) {
		err := errors.WithStack(NewPublicError("height is required"))
		var pErr *PublicError
		require.True(t, errors.As(err, &pErr))
		assert.Equal(t, "height is required", pErr.Message())
	})
	t.Run("with message", func(t *testing.T) {
		err := WithPublicMessage(errors.Wrap(InvalidArgument, "odd length hex"), "invalid transaction")
		var pErr *PublicError
		require.True(t, errors.As(err, &pErr))
		assert.Equal(t, "invalid transaction: odd length hex: Invalid Argument", pErr.Message())
		assert.True(t, errors.Is(err, InvalidArgument))
	})
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, WithPublicMessage(nil, "ignored"))
	})
}
