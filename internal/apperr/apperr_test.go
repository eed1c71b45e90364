package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, NotFound, KindOf(New(NotFound, "gone")))
	assert.Equal(t, Internal, KindOf(errors.New("plain")))
	assert.Equal(t, Internal, KindOf(nil))

	// Kind survives wrapping with fmt.Errorf.
	wrapped := fmt.Errorf("context: %w", New(Conflict, "duplicate"))
	assert.Equal(t, Conflict, KindOf(wrapped))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "duplicate", MessageOf(New(Conflict, "duplicate")))
	assert.Equal(t, "internal server error", MessageOf(errors.New("raw driver detail")))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(Internal, "failed to list customers", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to list customers", MessageOf(err))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestNewf(t *testing.T) {
	err := Newf(BusinessRule, "session limit reached: license allows %d concurrent sessions", 3)
	assert.Equal(t, BusinessRule, KindOf(err))
	assert.Equal(t, "session limit reached: license allows 3 concurrent sessions", MessageOf(err))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "validation", Validation.String())
	assert.Equal(t, "business_rule", BusinessRule.String())
	assert.Equal(t, "internal", Internal.String())
	assert.Equal(t, "internal", Kind(99).String())
}
