package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := New(KindAlreadyFinalized, "submission %s is already %s", "TKDN-2025-0001", "accepted")

	assert.True(t, errors.Is(err, ErrAlreadyFinalized))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "submission TKDN-2025-0001 is already accepted", err.Error())
}

func TestError_IsMatchesCode(t *testing.T) {
	err := InvalidCategory("furniture")

	assert.True(t, errors.Is(err, ErrValidation), "code-bearing errors still match their kind")
	assert.True(t, errors.Is(err, ErrInvalidCategory))
	assert.False(t, errors.Is(Validation("bad price"), ErrInvalidCategory))
}

func TestKindOf_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("transaction failed: %w", New(KindNotAccepted, "not accepted"))

	assert.Equal(t, KindNotAccepted, KindOf(wrapped))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, "", CodeOf(wrapped))
}

func TestInvalidTransition_UnwrapsCause(t *testing.T) {
	cause := errors.New("no transition")
	err := InvalidTransition("under_review", "under_review", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))
	assert.Contains(t, err.Error(), "cannot move from under_review to under_review")
}

func TestSentinel_ErrorString(t *testing.T) {
	assert.Equal(t, "NoJustificationDocument", ErrNoJustificationDoc.Error())
}
