package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWon(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0원"},
		{999, "999원"},
		{1000, "1,000원"},
		{50000, "50,000원"},
		{10644797.9, "10,644,797원"},
		{594661.19, "594,661원"},
		{-5000, "-5,000원"},
		{math.NaN(), "0원"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Won(tt.in))
	}
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "010-****-5678", MaskPhone("010-1234-5678"))
	assert.Equal(t, "02-***-4567", MaskPhone("02-123-4567"))
	assert.Equal(t, "010****5678", MaskPhone("01012345678"))
	assert.Equal(t, "*****", MaskPhone("12345"))
	assert.Equal(t, "", MaskPhone("  "))
}

func TestMaskResidentNo(t *testing.T) {
	assert.Equal(t, "900101-1******", MaskResidentNo("900101-1234567"))
	assert.Equal(t, "9001011******", MaskResidentNo("9001011234567"))
	assert.Equal(t, "", MaskResidentNo(""))
}
