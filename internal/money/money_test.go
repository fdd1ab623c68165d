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
		want    Cents
		wantErr bool
	}{
		{name: "whole", in: "15", want: 1500},
		{name: "two digits", in: "12.50", want: 1250},
		{name: "one digit", in: "0.1", want: 10},
		{name: "rounds half up", in: "1.005", want: 101},
		{name: "negative", in: "-3.25", want: -325},
		{name: "blank", in: "  ", want: 0},
		{name: "garbage", in: "twelve", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCentsAvoidsFloatDrift(t *testing.T) {
	var total Cents
	for i := 0; i < 10; i++ {
		total += MustParse("0.10")
	}
	assert.Equal(t, "1.00", total.String())
}

func TestCentsJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Price Cents `json:"price"`
	}{Price: 705})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":"7.05"}`, string(b))

	var fromNumber, fromString Cents
	require.NoError(t, json.Unmarshal([]byte(`12.5`), &fromNumber))
	require.NoError(t, json.Unmarshal([]byte(`"12.50"`), &fromString))
	assert.Equal(t, Cents(1250), fromNumber)
	assert.Equal(t, fromNumber, fromString)
}

func TestMinMaxSum(t *testing.T) {
	assert.Equal(t, Cents(5), Max(5, -2))
	assert.Equal(t, Cents(-2), Min(5, -2))
	assert.Equal(t, Cents(600), Sum(100, 200, 300))
	assert.Equal(t, Cents(0), Sum())
	assert.Equal(t, Cents(1500), Cents(500).Mul(3))
}
