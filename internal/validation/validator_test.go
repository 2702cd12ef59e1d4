package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marqed/marqed-server/internal/errors"
	"github.com/marqed/marqed-server/internal/validation"
)

type createBookmarkRequest struct {
	URL   string   `json:"url" validate:"required,url"`
	Title string   `json:"title" validate:"max=512"`
	Tags  []string `json:"tags" validate:"max=32,dive,min=1,max=64"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(createBookmarkRequest{
		URL:   "https://example.com/post",
		Title: "A post",
		Tags:  []string{"go"},
	})
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       createBookmarkRequest
		wantField string
	}{
		{
			name:      "missing url",
			req:       createBookmarkRequest{Title: "no url"},
			wantField: "url",
		},
		{
			name:      "malformed url",
			req:       createBookmarkRequest{URL: "not a url"},
			wantField: "url",
		},
		{
			name: "title too long",
			req: createBookmarkRequest{
				URL:   "https://example.com",
				Title: string(make([]byte, 513)),
			},
			wantField: "title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var appErr *errors.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, errors.CodeValidation, appErr.Code)

			fields, ok := appErr.Details.(map[string]string)
			require.True(t, ok, "details should carry per-field messages")
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(createBookmarkRequest{})
	require.Error(t, err)

	var appErr *errors.Error
	require.True(t, errors.As(err, &appErr))
	fields := appErr.Details.(map[string]string)

	// JSON tag name "url", not struct field name "URL".
	assert.Contains(t, fields, "url")
	assert.NotContains(t, fields, "URL")
}
