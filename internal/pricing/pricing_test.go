package pricing_test

import (
	"testing"

	"marketplace/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func entry(price string, active bool) pricing.CatalogEntry {
	return pricing.CatalogEntry{UnitPrice: decimal.RequireFromString(price), Active: active}
}

func TestComputeOrder_SingleLine(t *testing.T) {
	catalog := pricing.PriceLookup{
		1: entry("500.00", true),
	}

	quote, err := pricing.ComputeOrder([]pricing.Line{{ProductID: 1, Quantity: 2}}, catalog)
	assert.NoError(t, err)

	assert.Equal(t, "1000.00", quote.Subtotal.StringFixed(2))
	assert.Equal(t, "50.00", quote.Tax.StringFixed(2))
	assert.Equal(t, "50.00", quote.DeliveryFee.StringFixed(2))
	assert.Equal(t, "1100.00", quote.Total.StringFixed(2))

	assert.Equal(t, 1, len(quote.Lines))
	assert.Equal(t, "1000.00", quote.Lines[0].LineTotal.StringFixed(2))
}

func TestComputeOrder_MultipleLines(t *testing.T) {
	catalog := pricing.PriceLookup{
		1: entry("120.50", true),
		2: entry("35.25", true),
	}

	quote, err := pricing.ComputeOrder([]pricing.Line{
		{ProductID: 1, Quantity: 2}, //241.00
		{ProductID: 2, Quantity: 3}, //105.75
	}, catalog)
	assert.NoError(t, err)

	//346.75 * 0.05 = 17.3375 -> 17.34
	assert.Equal(t, "346.75", quote.Subtotal.StringFixed(2))
	assert.Equal(t, "17.34", quote.Tax.StringFixed(2))
	assert.Equal(t, "414.09", quote.Total.StringFixed(2))
}

func TestComputeOrder_TaxRoundsHalfUp(t *testing.T) {
	//9.90 * 0.05 = 0.495 -> 0.50
	catalog := pricing.PriceLookup{
		1: entry("9.90", true),
	}

	quote, err := pricing.ComputeOrder([]pricing.Line{{ProductID: 1, Quantity: 1}}, catalog)
	assert.NoError(t, err)

	assert.Equal(t, "0.50", quote.Tax.StringFixed(2))
	assert.Equal(t, "60.40", quote.Total.StringFixed(2))
}

func TestComputeOrder_EmptyOrder(t *testing.T) {
	_, err := pricing.ComputeOrder(nil, pricing.PriceLookup{})
	assert.ErrorIs(t, err, pricing.ErrEmptyOrder)
}

func TestComputeOrder_ZeroQuantity(t *testing.T) {
	catalog := pricing.PriceLookup{
		1: entry("10.00", true),
	}

	_, err := pricing.ComputeOrder([]pricing.Line{{ProductID: 1, Quantity: 0}}, catalog)

	var badQty *pricing.InvalidQuantityError
	assert.ErrorAs(t, err, &badQty)
	assert.Equal(t, int64(1), badQty.ProductID)
}

func TestComputeOrder_NegativeQuantity(t *testing.T) {
	catalog := pricing.PriceLookup{
		1: entry("10.00", true),
	}

	_, err := pricing.ComputeOrder([]pricing.Line{{ProductID: 1, Quantity: -3}}, catalog)

	var badQty *pricing.InvalidQuantityError
	assert.ErrorAs(t, err, &badQty)
	assert.Equal(t, int64(-3), badQty.Quantity)
}

func TestComputeOrder_UnknownProduct(t *testing.T) {
	catalog := pricing.PriceLookup{
		1: entry("10.00", true),
	}

	_, err := pricing.ComputeOrder([]pricing.Line{{ProductID: 99, Quantity: 1}}, catalog)

	var unavailable *pricing.UnavailableProductError
	assert.ErrorAs(t, err, &unavailable)
	assert.Equal(t, int64(99), unavailable.ProductID)
}

func TestComputeOrder_InactiveProduct(t *testing.T) {
	catalog := pricing.PriceLookup{
		1: entry("10.00", false),
	}

	_, err := pricing.ComputeOrder([]pricing.Line{{ProductID: 1, Quantity: 1}}, catalog)

	var unavailable *pricing.UnavailableProductError
	assert.ErrorAs(t, err, &unavailable)
}

func TestComputeOrder_Deterministic(t *testing.T) {
	catalog := pricing.PriceLookup{
		1: entry("33.33", true),
		2: entry("0.01", true),
	}
	lines := []pricing.Line{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 7},
	}

	a, err := pricing.ComputeOrder(lines, catalog)
	assert.NoError(t, err)
	b, err := pricing.ComputeOrder(lines, catalog)
	assert.NoError(t, err)

	assert.True(t, a.Total.Equal(b.Total))
	assert.True(t, a.Tax.Equal(b.Tax))
}
