package catalog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tehraja/backend/internal/domain/shared"
)

func TestNewTasteVector(t *testing.T) {
	tests := []struct {
		name                  string
		sweet, creamy, fruity int
		wantErr               bool
	}{
		{"all zero", 0, 0, 0, false},
		{"all max", 10, 10, 10, false},
		{"sweet too high", 11, 0, 0, true},
		{"creamy negative", 0, -1, 0, true},
		{"fruity too high", 0, 0, 42, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewTasteVector(tt.sweet, tt.creamy, tt.fruity)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, shared.IsCode(err, shared.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, TasteVector{Sweet: tt.sweet, Creamy: tt.creamy, Fruity: tt.fruity}, v)
		})
	}
}

func TestClampTasteVector(t *testing.T) {
	assert.Equal(t, TasteVector{Sweet: 10, Creamy: 0, Fruity: 5}, ClampTasteVector(15, -3, 5))
}

func TestTasteVector_DistanceTo(t *testing.T) {
	a := TasteVector{}
	b := TasteVector{Sweet: 10, Creamy: 10, Fruity: 10}

	assert.InDelta(t, math.Sqrt(300), a.DistanceTo(b), 1e-9)
	assert.InDelta(t, 17.32, a.DistanceTo(b), 0.01)
	assert.Equal(t, a.DistanceTo(b), b.DistanceTo(a))
	assert.Zero(t, b.DistanceTo(b))
	assert.Equal(t, 5.0, TasteVector{Sweet: 3}.DistanceTo(TasteVector{Creamy: 4}))
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Milk ")
	require.NoError(t, err)
	assert.Equal(t, CategoryMilk, c)

	_, err = ParseCategory("coffee")
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
}
