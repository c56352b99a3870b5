package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeTimeIDToken(t *testing.T) {
	createdAt := time.Date(2025, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeTimeIDToken(createdAt, "3f1c9a5e-0000-4000-8000-000000000001")
	assert.NotEmpty(t, token)

	at, id, err := DecodeTimeIDToken(token)
	require.NoError(t, err)
	assert.True(t, createdAt.Equal(at))
	assert.Equal(t, "3f1c9a5e-0000-4000-8000-000000000001", id)
}

func TestEncodeTimeIDToken_NormalisesZone(t *testing.T) {
	local := time.Date(2025, 1, 2, 10, 0, 0, 0, time.FixedZone("IST", 19800))

	at, _, err := DecodeTimeIDToken(EncodeTimeIDToken(local, "x"))
	require.NoError(t, err)
	assert.True(t, local.Equal(at))
	assert.Equal(t, time.UTC, at.Location())
}

func TestDecodeTimeIDToken_Invalid(t *testing.T) {
	tests := map[string]string{
		"not base64":    "%%%",
		"missing id":    EncodeMultiFieldToken("2025-01-01T00:00:00Z"),
		"empty id":      EncodeMultiFieldToken("2025-01-01T00:00:00Z", ""),
		"bad timestamp": EncodeMultiFieldToken("yesterday", "abc"),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := DecodeTimeIDToken(token)
			assert.Error(t, err)
		})
	}
}

func TestMultiFieldToken(t *testing.T) {
	token := EncodeMultiFieldToken("a", "b", "c")
	parts, err := DecodeMultiFieldToken(token)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, parts)
}
