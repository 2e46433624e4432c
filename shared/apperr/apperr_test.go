package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcoder/shared/apperr"
)

func TestProcessing(t *testing.T) {
	cause := errors.New("VipsForeignLoad: buffer is not in a known format")
	err := fmt.Errorf("transcode: %w", apperr.Processing(cause))

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, e.Code)
	assert.Equal(t, cause.Error(), e.Message)
	assert.False(t, e.IsClient())
	assert.ErrorIs(t, err, cause)
}

func TestBadRequest(t *testing.T) {
	e := apperr.BadRequestf("Invalid maxWidth", "%q is not a positive integer", "abc")

	assert.True(t, e.IsClient())
	assert.Equal(t, `Invalid maxWidth: "abc" is not a positive integer`, e.Error())
	assert.Equal(t, "Missing multipart boundary", apperr.BadRequest("Missing multipart boundary").Error())

	_, ok := apperr.As(errors.New("plain"))
	assert.False(t, ok)
}
