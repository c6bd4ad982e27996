package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSentinel = stderrors.New("sentinel")

func TestWrapKeepsCodeAndChain(t *testing.T) {
	base := DataLoad(fmt.Errorf("open: %w", errSentinel))
	wrapped := Wrapf(base, "chi trend for %s", "RACE")

	assert.Equal(t, CodeDataLoad, GetCode(wrapped))
	assert.True(t, stderrors.Is(wrapped, errSentinel))
	assert.Contains(t, wrapped.Error(), "chi trend for RACE")
}

func TestWrapPlainError(t *testing.T) {
	assert.Nil(t, Wrap(nil, "nothing"))
	err := Wrap(errSentinel, "context")
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.True(t, IsAppError(err))
	assert.Equal(t, "UNKNOWN", GetCode(errSentinel))
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, CodeConfigInvalid, ConfigInvalid("bad").Code)
	assert.Equal(t, CodeOutput, Output("x.png", errSentinel).Code)
	assert.Equal(t, "failed to render chi-pvalue.png: sentinel", Render("chi-pvalue.png", errSentinel).Error())
	assert.Equal(t, CodeAnalysis, Analysis("a", nil).Code)
}
