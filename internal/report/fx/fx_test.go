package fx

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbooks/ledger/internal/errs"
	"github.com/openbooks/ledger/internal/ledger"
)

func testConverter(t *testing.T, policy Policy) *Converter {
	t.Helper()
	c, err := New("GBP", []ledger.Currency{
		{Code: "GBP", Name: "Pound Sterling", Rate: "1", Base: true},
		{Code: "EUR", Name: "Euro", Rate: "1.1720"},
		{Code: "USD", Name: "US Dollar", Rate: "1.3485"},
	}, policy, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return c
}

func TestConvertMinor(t *testing.T) {
	c := testConverter(t, PolicyAssumeBase)

	// base -> quote multiplies by the quote rate
	got, err := c.ConvertMinor(10000, "GBP", "EUR")
	require.NoError(t, err)
	assert.Equal(t, int64(11720), got)

	// quote -> base divides by the quote rate
	got, err = c.ConvertMinor(11720, "EUR", "GBP")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), got)

	// same currency is the identity
	got, err = c.ConvertMinor(123, "USD", "usd")
	require.NoError(t, err)
	assert.Equal(t, int64(123), got)
}

func TestConvertRoundTrip(t *testing.T) {
	c := testConverter(t, PolicyReject)
	for _, amount := range []int64{1, 99, 10000, 123456789} {
		there, err := c.ConvertMinor(amount, "USD", "EUR")
		require.NoError(t, err)
		back, err := c.ConvertMinor(there, "EUR", "USD")
		require.NoError(t, err)
		// one minor unit of rounding tolerance per leg
		assert.LessOrEqual(t, math.Abs(float64(back-amount)), 2.0,
			"round trip of %d drifted to %d", amount, back)
	}
}

func TestUnknownCurrencyPolicies(t *testing.T) {
	permissive := testConverter(t, PolicyAssumeBase)
	got, err := permissive.ConvertMinor(500, "JPY", "GBP")
	require.NoError(t, err)
	assert.Equal(t, int64(500), got, "unknown code treated at par with base")

	strict := testConverter(t, PolicyReject)
	_, err = strict.ConvertMinor(500, "JPY", "GBP")
	assert.ErrorIs(t, err, errs.ErrUnknownCurrency)
}

func TestNewRejectsBadRates(t *testing.T) {
	_, err := New("GBP", []ledger.Currency{{Code: "EUR", Rate: "not-a-number"}}, PolicyReject, nil)
	assert.ErrorIs(t, err, errs.ErrInvalid)

	_, err = New("GBP", []ledger.Currency{{Code: "EUR", Rate: "-2"}}, PolicyReject, nil)
	assert.ErrorIs(t, err, errs.ErrInvalid)

	_, err = New("", nil, PolicyReject, nil)
	assert.ErrorIs(t, err, errs.ErrInvalid)
}

func TestToBaseMinor(t *testing.T) {
	c := testConverter(t, PolicyReject)
	got, err := c.ToBaseMinor(13485, "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), got)
}
