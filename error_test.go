package bibfetch_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/bibfetch"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := bibfetch.Errorf(bibfetch.ENOTFOUND, "translator %q not found", "arxiv")

	assert.Equal(t, bibfetch.ENOTFOUND, bibfetch.ErrorCode(err))
	assert.Equal(t, "translator \"arxiv\" not found", bibfetch.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, bibfetch.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, bibfetch.ErrorMessage(nil))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, bibfetch.EINTERNAL, bibfetch.ErrorCode(err))
	assert.Equal(t, "Internal error.", bibfetch.ErrorMessage(err))
}

func TestErrorCode_Wrapped(t *testing.T) {
	t.Parallel()

	inner := bibfetch.Errorf(bibfetch.ETIMEOUT, "request timed out")
	err := fmt.Errorf("fetching page: %w", inner)

	assert.Equal(t, bibfetch.ETIMEOUT, bibfetch.ErrorCode(err))
}

func TestWrapf(t *testing.T) {
	t.Parallel()

	cause := errors.New("selector exploded")
	err := bibfetch.Wrapf(bibfetch.EEXTRACT, cause, "extraction failed")
	err.Translator = "nature"

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "nature", bibfetch.ErrorTranslator(err))
	assert.Contains(t, err.Error(), "code=extraction_failed")
	assert.Contains(t, err.Error(), "nature: extraction failed: selector exploded")
}
