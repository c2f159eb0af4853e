package cooklang

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		resolved bool
		numeric  bool
		number   float64
		text     string
	}{
		{
			name:     "整數",
			raw:      "2",
			resolved: true,
			numeric:  true,
			number:   2,
		},
		{
			name:     "小數",
			raw:      "2.5",
			resolved: true,
			numeric:  true,
			number:   2.5,
		},
		{
			name:     "分數化簡",
			raw:      "1/2",
			resolved: true,
			numeric:  true,
			number:   0.5,
		},
		{
			name:     "前導零阻止分數運算",
			raw:      "01/2",
			resolved: true,
			text:     "01/2",
		},
		{
			name:     "分母前導零",
			raw:      "1/02",
			resolved: true,
			text:     "1/02",
		},
		{
			name:     "空字串未解析",
			raw:      "",
			resolved: false,
		},
		{
			name:     "純空白未解析",
			raw:      "   ",
			resolved: false,
		},
		{
			name:     "自由文字",
			raw:      "abc",
			resolved: true,
			text:     "abc",
		},
		{
			name:     "非數字分數保留原文",
			raw:      "a/b",
			resolved: true,
			text:     "a/b",
		},
		{
			name:     "右側非數字保留原文",
			raw:      "1/x",
			resolved: true,
			text:     "1/x",
		},
		{
			name:     "分母為零保留原文",
			raw:      "1/0",
			resolved: true,
			text:     "1/0",
		},
		{
			name:     "前後空白修剪",
			raw:      "  3  ",
			resolved: true,
			numeric:  true,
			number:   3,
		},
		{
			name:     "分數兩側空白修剪",
			raw:      "3 / 4",
			resolved: true,
			numeric:  true,
			number:   0.75,
		},
		{
			name:     "零可作分子",
			raw:      "0/2",
			resolved: true,
			numeric:  true,
			number:   0,
		},
		{
			name:     "零點五非前導零",
			raw:      "0.5/2",
			resolved: true,
			numeric:  true,
			number:   0.25,
		},
		{
			name:     "指數表示不算乾淨數字",
			raw:      "1e3",
			resolved: true,
			text:     "1e3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := ParseQuantity(tt.raw)
			require.Equal(t, tt.resolved, ok)
			if !tt.resolved {
				return
			}
			assert.Equal(t, tt.numeric, q.IsNumeric())
			if tt.numeric {
				assert.InDelta(t, tt.number, q.Number(), 1e-9)
			} else {
				assert.Equal(t, tt.text, q.Text())
			}
		})
	}
}

func TestParseUnits(t *testing.T) {
	u, ok := ParseUnits(" cups ")
	require.True(t, ok)
	assert.Equal(t, "cups", u)

	_, ok = ParseUnits("   ")
	assert.False(t, ok)

	_, ok = ParseUnits("")
	assert.False(t, ok)
}

func TestCoerceQuantity(t *testing.T) {
	q := CoerceQuantity("1")
	require.True(t, q.IsNumeric())
	assert.InDelta(t, 1.0, q.Number(), 1e-9)

	q = CoerceQuantity("1/2")
	require.True(t, q.IsNumeric())
	assert.InDelta(t, 0.5, q.Number(), 1e-9)

	q = CoerceQuantity("some")
	require.False(t, q.IsNumeric())
	assert.Equal(t, "some", q.Text())
}

func TestQuantityJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		q    Quantity
		json string
	}{
		{"數值", NumericQuantity(0.5), `0.5`},
		{"整數值", NumericQuantity(2), `2`},
		{"字串", TextualQuantity("some"), `"some"`},
		{"帶斜線的原文", TextualQuantity("01/2"), `"01/2"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.q)
			require.NoError(t, err)
			assert.JSONEq(t, tt.json, string(data))

			var back Quantity
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.q, back)
		})
	}
}
