package money

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		cents   int64
		str     string
		wantErr bool
	}{
		{in: "10", cents: 1000, str: "10.00"},
		{in: "10.5", cents: 1050, str: "10.50"},
		{in: "3.33", cents: 333, str: "3.33"},
		{in: "-6.67", cents: -667, str: "-6.67"},
		{in: "0", cents: 0, str: "0.00"},
		{in: "1.000", cents: 100, str: "1.00"},
		{in: "1.005", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cents, m.Cents())
			assert.Equal(t, tt.str, m.String())
		})
	}
}

func TestArithmetic(t *testing.T) {
	a := MustParse("10.00")
	b := MustParse("6.67")

	assert.Equal(t, "16.67", a.Add(b).String())
	assert.Equal(t, "3.33", a.Sub(b).String())
	assert.Equal(t, "-3.33", b.Sub(a).String())
	assert.Equal(t, "3.33", b.Sub(a).Abs().String())
	assert.Equal(t, 1, a.Cmp(b))
	assert.Equal(t, -1, b.Cmp(a))
	assert.Equal(t, 0, a.Cmp(FromCents(1000)))
	assert.True(t, a.IsPositive())
	assert.True(t, b.Sub(a).IsNegative())
	assert.True(t, Zero.IsZero())
	assert.Equal(t, "20.00", Sum(a, a).String())
	assert.Equal(t, Zero, Sum())
}

func TestFromDecimal(t *testing.T) {
	m, err := FromDecimal(decimal.RequireFromString("33.34"))
	require.NoError(t, err)
	assert.Equal(t, int64(3334), m.Cents())
	assert.True(t, m.Decimal().Equal(decimal.RequireFromString("33.34")))

	_, err = FromDecimal(decimal.RequireFromString("0.001"))
	assert.Error(t, err)
}

func TestParse_Bounds(t *testing.T) {
	m, err := Parse("100000000000.00")
	require.NoError(t, err)
	assert.Equal(t, Max, m)

	m, err = Parse("-100000000000")
	require.NoError(t, err)
	assert.Equal(t, int64(-MaxCents), m.Cents())

	for _, in := range []string{"100000000000.01", "-100000000000.01", "92233720368547758.07", "1e30"} {
		_, err := Parse(in)
		assert.ErrorContains(t, err, "exceeds maximum", in)
	}
}

func TestCheckedAdd(t *testing.T) {
	sum, err := Max.CheckedAdd(Max)
	require.NoError(t, err)
	assert.Equal(t, int64(2*MaxCents), sum.Cents())

	_, err = FromCents(math.MaxInt64).CheckedAdd(FromCents(1))
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = FromCents(math.MinInt64).CheckedAdd(FromCents(-1))
	assert.ErrorIs(t, err, ErrOverflow)

	sum, err = FromCents(math.MaxInt64).CheckedAdd(FromCents(-1))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64-1), sum.Cents())
}

func TestValueScan(t *testing.T) {
	v, err := MustParse("9.99").Value()
	require.NoError(t, err)
	assert.Equal(t, int64(999), v)

	var m Money
	require.NoError(t, m.Scan(int64(250)))
	assert.Equal(t, "2.50", m.String())
	assert.Error(t, m.Scan("2.50"))
}
