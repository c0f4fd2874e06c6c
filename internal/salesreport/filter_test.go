package salesreport

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFilterValidate(t *testing.T) {
	valid := Filter{From: day(2024, 3, 1), To: day(2024, 3, 7)}
	require.NoError(t, valid.Validate(0))
	require.NoError(t, Filter{From: day(2024, 3, 1), To: day(2024, 3, 1)}.Validate(0))

	cases := map[string]Filter{
		"missing from":  {To: day(2024, 3, 1)},
		"missing to":    {From: day(2024, 3, 1)},
		"inverted":      {From: day(2024, 3, 7), To: day(2024, 3, 1)},
		"long category": {From: day(2024, 3, 1), To: day(2024, 3, 1), Category: strings.Repeat("x", 129)},
	}
	for name, f := range cases {
		err := f.Validate(0)
		assert.ErrorIs(t, err, ErrInvalidFilter, name)
	}
}

func TestFilterValidateMaxRange(t *testing.T) {
	f := Filter{From: day(2024, 1, 1), To: day(2024, 3, 1)}
	err := f.Validate(30 * 24 * time.Hour)
	require.ErrorIs(t, err, ErrInvalidFilter)
	assert.Contains(t, err.Error(), "30 days")
	assert.NoError(t, f.Validate(0))
}

func TestFilterNormalizeAndKey(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	f := Filter{
		From:      time.Date(2024, 3, 1, 22, 15, 0, 0, jakarta),
		To:        time.Date(2024, 3, 2, 1, 0, 0, 0, jakarta),
		OrderType: "  GrabFood ",
	}.Normalize()
	assert.Equal(t, day(2024, 3, 1), f.From)
	assert.Equal(t, day(2024, 3, 2), f.To)
	assert.Equal(t, "2024-03-01:2024-03-02:GrabFood:-", f.Key())
}

func TestKeyReportIsStableAndBounded(t *testing.T) {
	a := Filter{From: day(2024, 3, 1), To: day(2024, 3, 1), Category: strings.Repeat("Minuman ", 10)}
	b := a
	b.Category = "Makanan"
	assert.Equal(t, keyReport(a), keyReport(a))
	assert.NotEqual(t, keyReport(a), keyReport(b))
	assert.Len(t, keyReport(a), len("salesreport:report:")+32)
}
