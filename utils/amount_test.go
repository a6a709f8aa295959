package utils

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{in: "1000", want: 1000},
		{in: "100_000_000", want: 100_000_000},
		{in: " 42 ", want: 42},
		{in: "0", want: 0},
		{in: "", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "1.5", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint256.NewInt(tt.want), got)
		})
	}
}

func TestUint256StringConversion(t *testing.T) {
	assert.Equal(t, "0", Uint256ToString(nil))
	assert.Equal(t, "123456789", Uint256ToString(uint256.NewInt(123456789)))

	v, err := Uint256FromString("")
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	v, err = Uint256FromString("18446744073709551616")
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551616", v.Dec())
}
