package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int64
		wantErr bool
	}{
		{name: "two decimal places", in: "15.99", want: 1599},
		{name: "no decimal places", in: "30", want: 3000},
		{name: "one decimal place", in: "0.5", want: 50},
		{name: "zero", in: "0.00", want: 0},
		{name: "trailing zeros beyond cents", in: "1.990", want: 199},
		{name: "three decimal places", in: "1.999", wantErr: true},
		{name: "negative", in: "-1.00", wantErr: true},
		{name: "not a number", in: "abc", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.MinorUnits())
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "15.99", FromMinorUnits(1599).String())
	assert.Equal(t, "0.00", FromMinorUnits(0).String())
	assert.Equal(t, "31.98", FromMinorUnits(3198).String())
	assert.Equal(t, "0.05", FromMinorUnits(5).String())
}

func TestMulAndAddAreExact(t *testing.T) {
	// 15.99 * 2 must be exactly 31.98, never 31.979999....
	unit := FromMinorUnits(1599)
	assert.Equal(t, FromMinorUnits(3198), unit.Mul(2))

	total := Amount(0)
	for i := 0; i < 1000; i++ {
		total = total.Add(FromMinorUnits(10))
	}
	assert.Equal(t, int64(10000), total.MinorUnits())
}

func TestJSONRoundTrip(t *testing.T) {
	var a Amount
	require.NoError(t, json.Unmarshal([]byte(`"15.99"`), &a))
	assert.Equal(t, int64(1599), a.MinorUnits())

	out, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `"15.99"`, string(out))

	// Bare numbers are accepted too.
	require.NoError(t, json.Unmarshal([]byte(`42`), &a))
	assert.Equal(t, int64(4200), a.MinorUnits())
}
