package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"factura/internal/core/apperror"
)

func TestListFilter_Normalize(t *testing.T) {
	f := ListFilter{Search: "  2025-F ", Limit: 10000, Offset: -3}
	f.Normalize()

	assert.Equal(t, "2025-F", f.Search)
	assert.Equal(t, MaxLimit, f.Limit)
	assert.Equal(t, 0, f.Offset)

	f = ListFilter{}
	f.Normalize()
	assert.Equal(t, DefaultLimit, f.Limit)
}

func TestNormalizeGetErr(t *testing.T) {
	assert.NoError(t, NormalizeGetErr(nil, "quote", "1"))

	err := NormalizeGetErr(apperror.NewNotFound("quotes", "1"), "quote", "1")
	appErr, ok := apperror.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, "quote", appErr.Details["entity"])

	err = NormalizeGetErr(errors.New("boom"), "invoice", "2")
	assert.Equal(t, apperror.CodeInternal, err.(*apperror.AppError).Code)
}
