package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadDigest(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		wantLen int
	}{
		{name: "json payload", payload: []byte(`{"name":"Sweep Left"}`), wantLen: 64},
		{name: "binary payload", payload: []byte{0x00, 0x01, 0xff}, wantLen: 64},
		{name: "empty payload", payload: []byte{}, wantLen: 0},
		{name: "nil payload", payload: nil, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest := PayloadDigest(tt.payload)
			assert.Len(t, digest, tt.wantLen)
			if tt.wantLen > 0 {
				// BLAKE2b-256 всегда 32 байта, hex-encoded
				assert.Regexp(t, "^[a-f0-9]{64}$", digest)
			}
		})
	}
}

func TestPayloadDigest_Deterministic(t *testing.T) {
	payload := []byte(`{"formation":"shotgun"}`)

	assert.Equal(t, PayloadDigest(payload), PayloadDigest(payload))
	assert.NotEqual(t, PayloadDigest(payload), PayloadDigest([]byte(`{"formation":"pistol"}`)))
}

func TestVerifyPayloadDigest(t *testing.T) {
	payload := []byte(`{"routes":[]}`)
	digest := PayloadDigest(payload)

	require.NoError(t, VerifyPayloadDigest(payload, digest))

	err := VerifyPayloadDigest([]byte(`{"routes":[1]}`), digest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")

	err = VerifyPayloadDigest(payload, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")
}
