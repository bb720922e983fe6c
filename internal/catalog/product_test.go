package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_FromMapping(t *testing.T) {
	testCases := []struct {
		name        string
		mapping     Mapping
		expected    *Product
		expectedKey string
	}{
		{
			name:     "Success - typed values",
			mapping:  Mapping{"id": int64(1), "name": "A", "description": "d", "cost": 2.5, "qty": int64(3)},
			expected: &Product{ID: 1, Name: "A", Description: "d", Cost: 2.5, Qty: 3},
		},
		{
			name:     "Success - untyped numbers",
			mapping:  Mapping{"id": 7, "name": "B", "description": "", "cost": 0, "qty": 0},
			expected: &Product{ID: 7, Name: "B"},
		},
		{
			name:     "Success - json numbers",
			mapping:  Mapping{"id": json.Number("9"), "name": "C", "description": "x", "cost": json.Number("1.25"), "qty": json.Number("4")},
			expected: &Product{ID: 9, Name: "C", Description: "x", Cost: 1.25, Qty: 4},
		},
		{
			name:        "Error - qty missing",
			mapping:     Mapping{"id": 1, "name": "A", "description": "d", "cost": 2.5},
			expectedKey: "qty",
		},
		{
			name:        "Error - empty mapping",
			mapping:     Mapping{},
			expectedKey: "id",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			p, err := FromMapping(tc.mapping)
			// then
			if tc.expectedKey != "" {
				require.ErrorIs(t, err, ErrMissingKey)
				var keyErr *KeyError
				require.ErrorAs(t, err, &keyErr)
				assert.Equal(t, tc.expectedKey, keyErr.Key)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, p)
		})
	}
}

func Test_FromMapping_WrongType(t *testing.T) {
	// given
	m := Mapping{"id": 1, "name": []string{"not", "a", "name"}, "description": "d", "cost": 1.0, "qty": 1}
	// when
	p, err := FromMapping(m)
	// then
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingKey)
	assert.Nil(t, p)
}

func Test_Product_MappingRoundTrip(t *testing.T) {
	mappings := []Mapping{
		{"id": int64(1), "name": "A", "description": "d", "cost": 2.5, "qty": int64(3)},
		{"id": int64(0), "name": "", "description": "", "cost": 0.0, "qty": int64(0)},
		{"id": int64(42), "name": "Widget", "description": "blue", "cost": 1e6, "qty": int64(1 << 40)},
	}

	for _, m := range mappings {
		// when
		p, err := FromMapping(m)
		// then
		require.NoError(t, err)
		assert.Equal(t, m, p.ToMapping())

		again, err := FromMapping(p.ToMapping())
		require.NoError(t, err)
		assert.Equal(t, p, again)
	}
}

func Test_NewProduct_DefaultsQty(t *testing.T) {
	p := NewProduct(5, "Lamp", "desk lamp", 19.99)

	assert.Equal(t, &Product{ID: 5, Name: "Lamp", Description: "desk lamp", Cost: 19.99}, p)
	assert.Zero(t, p.Qty)
}
