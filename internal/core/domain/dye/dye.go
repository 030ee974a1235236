package dye

// Dye is one catalog entry: a purchasable dye item and its display color.
type Dye struct {
	ID       int    `json:"id"`
	ItemID   int    `json:"item_id"` // id used by the market price API
	Name     string `json:"name"`
	Hex      string `json:"hex"` // "#RRGGBB"
	Category string `json:"category"`
}
