package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound2_HalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1.00"},
		{"-1.005", "-1.01"},
		{"2.5", "2.50"},
		{"0", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(Round2(MustMoney(tt.in))))
		})
	}
}

func TestPercentOf(t *testing.T) {
	got := PercentOf(MustMoney("200"), MustMoney("20"))
	assert.True(t, got.Equal(MustMoney("40")), "got %s", got)

	got = PercentOf(MustMoney("33.33"), MustMoney("5.5"))
	assert.Equal(t, "1.83", FormatMoney(Round2(got)))
}

func TestIsPercent(t *testing.T) {
	assert.True(t, IsPercent(MustMoney("0")))
	assert.True(t, IsPercent(MustMoney("100")))
	assert.False(t, IsPercent(MustMoney("100.01")))
	assert.False(t, IsPercent(MustMoney("-0.01")))
}

func TestNewMoneyFromString(t *testing.T) {
	d, err := NewMoneyFromString(" 12.50 ")
	require.NoError(t, err)
	assert.Equal(t, "12.50", FormatMoney(d))

	_, err = NewMoneyFromString("twelve")
	assert.Error(t, err)
}
