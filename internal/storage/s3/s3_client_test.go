package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finextract/internal/domain"
)

func TestParseURI(t *testing.T) {
	bucket, key, err := ParseURI("s3://reports/2025/q4.pdf")
	assert.NoError(t, err)
	assert.Equal(t, "reports", bucket)
	assert.Equal(t, "2025/q4.pdf", key)
}

func TestParseURI_Invalid(t *testing.T) {
	for _, uri := range []string{"reports/q4.pdf", "s3://", "s3://bucket", "s3://bucket/", "s3:///key"} {
		_, _, err := ParseURI(uri)
		assert.ErrorIs(t, err, domain.ErrInvalidSource, uri)
	}
}

func TestIsURI(t *testing.T) {
	assert.True(t, IsURI("s3://b/k"))
	assert.False(t, IsURI("/tmp/s3://b/k"))
}
