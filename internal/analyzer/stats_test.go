package analyzer

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuknee/stock-profit-analyzer/internal/model"
)

func TestSummarizeRange(t *testing.T) {
	s := series(t, 7, 1, 5, 3, 6, 4)

	st, ok, err := SummarizeRange(s, d(1), d(6))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 6, st.Points)
	assert.Equal(t, d(2), st.Low.Date)
	assert.Equal(t, d(1), st.High.Date)
	assert.Equal(t, d(6), st.Last.Date)
	assert.True(t, decimal.NewFromFloat(0.5).Equal(st.Position), "position %s", st.Position)

	st, ok, err = SummarizeRange(s, d(3), d(5))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, st.Points)
	assert.Equal(t, d(4), st.Low.Date)
	assert.Equal(t, d(5), st.High.Date)
	assert.True(t, decimal.NewFromInt(1).Equal(st.Position))
}

func TestSummarizeRange_FlatAndSingle(t *testing.T) {
	s := series(t, 2, 2, 2)
	st, ok, err := SummarizeRange(s, d(1), d(3))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, d(1), st.High.Date, "ties keep the earliest date")
	assert.Equal(t, d(1), st.Low.Date)
	assert.True(t, half.Equal(st.Position))

	st, ok, err = SummarizeRange(s, d(2), d(2))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, st.Points)
}

func TestSummarizeRange_Empty(t *testing.T) {
	s := series(t)
	_, ok, err := SummarizeRange(s, d(1), d(2))
	require.NoError(t, err)
	assert.False(t, ok)

	empty, err := model.NewPriceSeries("GAP", nil)
	require.NoError(t, err)
	_, ok, err = SummarizeRange(empty, d(5), d(5))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSummarizeRange_RangeError(t *testing.T) {
	s := series(t, 1, 2, 3)
	_, _, err := SummarizeRange(s, d(3), d(1))
	assert.True(t, errors.Is(err, ErrRange))
}
