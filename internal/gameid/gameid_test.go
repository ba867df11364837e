package gameid

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	id := New()
	require.Len(t, id, 26)
	require.NoError(t, Validate(id))
	assert.LessOrEqual(t, id[0], byte('7'))
}

func TestNewUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNewTimeOrdered(t *testing.T) {
	base := time.UnixMilli(1700000000000)
	entropy := bytes.NewReader(bytes.Repeat([]byte{0xaa}, 64))

	earlier := (&Generator{Entropy: entropy, Now: func() time.Time { return base }}).New()
	later := (&Generator{Entropy: entropy, Now: func() time.Time { return base.Add(time.Second) }}).New()

	assert.Less(t, earlier, later)
}

func TestNewDeterministic(t *testing.T) {
	gen := func() string {
		return (&Generator{
			Entropy: bytes.NewReader(bytes.Repeat([]byte{0x42}, 10)),
			Now:     func() time.Time { return time.UnixMilli(0) },
		}).New()
	}
	assert.Equal(t, gen(), gen())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", "01h455vb4pex5vsknk084sn02q", false},
		{"too short", "01h455vb4p", true},
		{"overflow lead", "81h455vb4pex5vsknk084sn02q", true},
		{"bad character", "01h455vb4pex5vsknk084sn02u", true},
		{"uppercase rejected", "01H455VB4PEX5VSKNK084SN02Q", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
