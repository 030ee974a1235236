package ports

import "github.com/glamweave/dyebudget/internal/core/domain/dye"

// DyeCatalog is the read-only dye reference data plus its color metric.
// Passed in explicitly wherever it is needed; there is no package-level
// singleton.
type DyeCatalog interface {
	GetByID(id int) (*dye.Dye, bool)
	GetByItemID(itemID int) (*dye.Dye, bool)
	GetAll() []*dye.Dye
	// ColorDistance returns a non-negative similarity metric between two
	// "#RRGGBB" colors; smaller means more alike.
	ColorDistance(hexA, hexB string) float64
}
