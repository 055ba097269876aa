package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountCoercesGarbageToZero(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"number", `50000`, 50000},
		{"numeric string", `"50000"`, 50000},
		{"comma string", `"1,234,567"`, 1234567},
		{"empty string", `""`, 0},
		{"null", `null`, 0},
		{"garbage", `"오만원"`, 0},
		{"object", `{"won":1}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			require.NoError(t, json.Unmarshal([]byte(tt.in), &a))
			assert.Equal(t, tt.want, a.Float64())
		})
	}
}

func TestBoundRoundTrip(t *testing.T) {
	fixed := FixedBound(time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC))

	data, err := json.Marshal(fixed)
	require.NoError(t, err)
	assert.Equal(t, `"2023-07-01"`, string(data))

	data, err = json.Marshal(OpenBound())
	require.NoError(t, err)
	assert.Equal(t, `"dynamic"`, string(data))

	data, err = json.Marshal(Bound{Kind: BoundAbsent})
	require.NoError(t, err)
	assert.Equal(t, `null`, string(data))

	var b Bound
	require.NoError(t, json.Unmarshal([]byte(`"dynamic"`), &b))
	assert.Equal(t, BoundOpen, b.Kind)

	require.NoError(t, json.Unmarshal([]byte(`"2023-07-01"`), &b))
	assert.Equal(t, BoundFixed, b.Kind)
	assert.Equal(t, fixed.Date, b.Date)
}

func TestParseBoundFailSoft(t *testing.T) {
	assert.Equal(t, BoundAbsent, ParseBound("").Kind)
	assert.Equal(t, BoundAbsent, ParseBound("not-a-date").Kind)
	assert.Equal(t, BoundOpen, ParseBound("DYNAMIC").Kind)

	var b Bound
	require.NoError(t, json.Unmarshal([]byte(`42`), &b))
	assert.Equal(t, BoundAbsent, b.Kind)
}

func TestBoundEncode(t *testing.T) {
	enc := FixedBound(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)).Encode()
	require.NotNil(t, enc)
	assert.Equal(t, "2023-01-02", *enc)

	enc = OpenBound().Encode()
	require.NotNil(t, enc)
	assert.Equal(t, "dynamic", *enc)

	assert.Nil(t, Bound{Kind: BoundAbsent}.Encode())
}

func TestTrancheDecodeTolerant(t *testing.T) {
	raw := `{"rate":"12","start_date":"2023-01-01","end_date":"dynamic"}`
	var tr InterestTranche
	require.NoError(t, json.Unmarshal([]byte(raw), &tr))
	assert.Equal(t, 12.0, tr.Rate.Float64())
	assert.False(t, tr.Start.IsZero())
	assert.Equal(t, BoundOpen, tr.End.Kind)

	raw = `{"rate":null,"start_date":"bad","end_date":null}`
	require.NoError(t, json.Unmarshal([]byte(raw), &tr))
	assert.Zero(t, tr.Rate.Float64())
	assert.True(t, tr.Start.IsZero())
	assert.Equal(t, BoundAbsent, tr.End.Kind)
}
