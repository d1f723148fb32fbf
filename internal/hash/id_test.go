package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	tests := []struct {
		name string
		data string
		id   uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, ID(tt.data))
		})
	}
}

func TestChecksum(t *testing.T) {
	require.Equal(t, ID("test"), Checksum([]byte("test")))
	require.NotEqual(t, Checksum([]byte{1, 2, 3}), Checksum([]byte{1, 2, 4}))
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]string{"CD45", "CD3"})
	b := Fingerprint([]string{"CD3", "CD45"})
	c := Fingerprint([]string{"CD45CD3"})

	require.NotEqual(t, a, b)
	require.NotEqual(t, a, c)
	require.Equal(t, a, Fingerprint([]string{"CD45", "CD3"}))
}
