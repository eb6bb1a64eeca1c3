package catalog

import (
	"fmt"
	"math"

	"github.com/tehraja/backend/internal/domain/shared"
)

// Taste axis bounds
const (
	TasteMin = 0
	TasteMax = 10
)

// TasteVector is a flavour profile on three axes, each in [0,10]. Products and
// customer preferences use the same type so they can be compared directly.
type TasteVector struct {
	Sweet  int `json:"sweet"`
	Creamy int `json:"creamy"`
	Fruity int `json:"fruity"`
}

// NewTasteVector creates a taste vector, rejecting any axis outside [0,10]
func NewTasteVector(sweet, creamy, fruity int) (TasteVector, error) {
	v := TasteVector{Sweet: sweet, Creamy: creamy, Fruity: fruity}
	if err := v.Validate(); err != nil {
		return TasteVector{}, err
	}
	return v, nil
}

// ClampTasteVector creates a taste vector, clamping each axis into [0,10]
func ClampTasteVector(sweet, creamy, fruity int) TasteVector {
	return TasteVector{
		Sweet:  clampAxis(sweet),
		Creamy: clampAxis(creamy),
		Fruity: clampAxis(fruity),
	}
}

// Validate checks every axis is within bounds
func (v TasteVector) Validate() error {
	for _, axis := range []struct {
		name  string
		value int
	}{
		{"sweet", v.Sweet},
		{"creamy", v.Creamy},
		{"fruity", v.Fruity},
	} {
		if axis.value < TasteMin || axis.value > TasteMax {
			return shared.NewValidationError(
				fmt.Sprintf("Taste %s must be between %d and %d", axis.name, TasteMin, TasteMax)).
				WithDetail("field", axis.name)
		}
	}
	return nil
}

// DistanceTo returns the Euclidean distance between two vectors
func (v TasteVector) DistanceTo(other TasteVector) float64 {
	ds := float64(v.Sweet - other.Sweet)
	dc := float64(v.Creamy - other.Creamy)
	df := float64(v.Fruity - other.Fruity)
	return math.Sqrt(ds*ds + dc*dc + df*df)
}

// String renders the vector in the S/C/F shorthand used on the admin table
func (v TasteVector) String() string {
	return fmt.Sprintf("S:%d C:%d F:%d", v.Sweet, v.Creamy, v.Fruity)
}

func clampAxis(x int) int {
	return min(max(x, TasteMin), TasteMax)
}
