package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDays(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"7d", 7, false},
		{"1d", 1, false},
		{" 30d ", 30, false},
		{"7", 0, true},
		{"", 0, true},
		{"d", 0, true},
		{"0d", 0, true},
		{"-3d", 0, true},
		{"1.5d", 0, true},
		{"7h", 0, true},
		{"3650d", 3650, false},
		{"3651d", 0, true},
		{"999999d", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDays(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseExpiry(t *testing.T) {
	d, err := ParseExpiry("5d")
	require.NoError(t, err)
	assert.Equal(t, 5*24*time.Hour, d)

	d, err = ParseExpiry("90m")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	for _, bad := range []string{"", "5", "soon", "-1h", "0s", "0d"} {
		_, err := ParseExpiry(bad)
		assert.Error(t, err, bad)
	}
}
