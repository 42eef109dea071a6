package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "bucket and key",
			err:  NewObjectError("get", "photos", "cat.jpg", base),
			want: "bulks3.get photos/cat.jpg: boom",
		},
		{
			name: "bucket only",
			err:  NewError("list", base).WithBucket("photos"),
			want: "bulks3.list bucket photos: boom",
		},
		{
			name: "key only",
			err:  NewError("put", base).WithKey("cat.jpg"),
			want: "bulks3.put object cat.jpg: boom",
		},
		{
			name: "bare operation",
			err:  NewError("client initialization", base),
			want: "bulks3.client initialization: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := NewObjectError("get", "photos", "cat.jpg", ErrObjectNotFound)

	require.True(t, errors.Is(err, ErrObjectNotFound))
	assert.True(t, IsObjectNotFound(err))
	assert.False(t, IsAccessDenied(err))
}

func TestError_WithMessage(t *testing.T) {
	err := NewError("get", ErrInvalidInput).WithMessage("bucket name cannot be empty")

	// The message decorates the chain without breaking errors.Is.
	require.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "bucket name cannot be empty")
}

func TestIsAccessDenied(t *testing.T) {
	assert.True(t, IsAccessDenied(NewError("put", ErrAccessDenied)))
	assert.False(t, IsAccessDenied(errors.New("boom")))
	assert.False(t, IsAccessDenied(nil))
}
