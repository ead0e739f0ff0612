package readmodel

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogItem_PriceIsBareNumber(t *testing.T) {
	require.False(t, decimal.MarshalJSONWithoutQuotes)

	raw, err := json.Marshal(CatalogItem{ID: 2, Title: "Anillo", Price: NewPrice(decimal.RequireFromString("9.99"))})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"price":9.99`)

	// Bare decimals elsewhere keep the library default.
	raw, err = json.Marshal(decimal.RequireFromString("9.99"))
	require.NoError(t, err)
	assert.Equal(t, `"9.99"`, string(raw))
}

func TestPrice_DecodesNumbersAndStrings(t *testing.T) {
	var items []CatalogItem
	require.NoError(t, json.Unmarshal([]byte(`[{"id":1,"price":109.95},{"id":2,"price":"22.3"}]`), &items))
	require.Len(t, items, 2)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("109.95")))
	assert.True(t, items[1].Price.Equal(decimal.RequireFromString("22.30")))
}

func TestPrice_ZeroValue(t *testing.T) {
	raw, err := json.Marshal(Page{ID: 1, Front: CatalogItem{ID: 1}})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"price":0`)
}
