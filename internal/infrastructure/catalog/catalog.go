package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/glamweave/dyebudget/internal/core/domain/dye"
	"github.com/glamweave/dyebudget/internal/core/ports"
)

//go:embed dyes.json
var dyesJSON []byte

// StaticCatalog is the embedded dye reference data. Built once at startup
// and read-only afterwards, so no locking is needed.
type StaticCatalog struct {
	dyes     []*dye.Dye
	byID     map[int]*dye.Dye
	byItemID map[int]*dye.Dye
}

// NewStaticCatalog loads the embedded dye list.
func NewStaticCatalog() (*StaticCatalog, error) {
	var dyes []*dye.Dye
	if err := json.Unmarshal(dyesJSON, &dyes); err != nil {
		return nil, fmt.Errorf("failed to parse embedded dye catalog: %w", err)
	}

	c := &StaticCatalog{
		dyes:     dyes,
		byID:     make(map[int]*dye.Dye, len(dyes)),
		byItemID: make(map[int]*dye.Dye, len(dyes)),
	}
	for _, d := range dyes {
		c.byID[d.ID] = d
		c.byItemID[d.ItemID] = d
	}
	return c, nil
}

func (c *StaticCatalog) GetByID(id int) (*dye.Dye, bool) {
	d, ok := c.byID[id]
	return d, ok
}

func (c *StaticCatalog) GetByItemID(itemID int) (*dye.Dye, bool) {
	d, ok := c.byItemID[itemID]
	return d, ok
}

// GetAll returns the catalog in its stable declaration order.
func (c *StaticCatalog) GetAll() []*dye.Dye {
	return c.dyes
}

// ColorDistance is the "redmean" weighted RGB distance, a cheap
// approximation of perceptual color difference. Unparseable colors compare
// as maximally distant.
func (c *StaticCatalog) ColorDistance(hexA, hexB string) float64 {
	r1, g1, b1, ok1 := parseHex(hexA)
	r2, g2, b2, ok2 := parseHex(hexB)
	if !ok1 || !ok2 {
		return math.MaxFloat64
	}

	rMean := (r1 + r2) / 2
	dr := r1 - r2
	dg := g1 - g2
	db := b1 - b2
	return math.Sqrt((2+rMean/256)*dr*dr + 4*dg*dg + (2+(255-rMean)/256)*db*db)
}

func parseHex(hex string) (r, g, b float64, ok bool) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return float64(v >> 16 & 0xff), float64(v >> 8 & 0xff), float64(v & 0xff), true
}

var _ ports.DyeCatalog = (*StaticCatalog)(nil)
