package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountryByCode(t *testing.T) {
	t.Parallel()

	us, err := CountryByCode("US")
	require.NoError(t, err)
	assert.Equal(t, "United States", us.Name)
	assert.Equal(t, "USD", us.Currency)
	assert.Equal(t, 1.0, us.CostMultiplier)

	uk, err := CountryByCode("UK")
	require.NoError(t, err)
	assert.Equal(t, "GBP", uk.Currency)
	assert.Less(t, uk.CostMultiplier, 1.0)

	_, err = CountryByCode("XX")
	assert.Error(t, err)
}

func TestCountryCodes(t *testing.T) {
	t.Parallel()

	codes := CountryCodes()
	assert.Equal(t, []string{"DE", "ES", "FR", "IT", "UK", "US"}, codes)

	for _, code := range codes {
		c, err := CountryByCode(code)
		require.NoError(t, err)
		assert.Equal(t, code, c.Code)
		assert.Greater(t, c.Population, 0)
		assert.Greater(t, c.CostMultiplier, 0.0)
		assert.Greater(t, c.USDExchange, 0.0)
		assert.InDelta(t, 0.8, c.AdultFraction, 0.05)
	}
}
