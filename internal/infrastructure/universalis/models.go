package universalis

// Wire types for the Universalis v2 API. Kept separate from the domain
// model; the client translates them into market.PriceSnapshot values.

type aggregatedResponse struct {
	Results map[string]aggregatedItem `json:"results"`
}

type aggregatedItem struct {
	NQ             qualityData `json:"nq"`
	LastUploadTime int64       `json:"lastUploadTime"` // epoch milliseconds
}

type qualityData struct {
	MinPrice int       `json:"minPrice"`
	MaxPrice int       `json:"maxPrice"`
	Listings []listing `json:"listings"`
}

type listing struct {
	PricePerUnit int `json:"pricePerUnit"`
	Quantity     int `json:"quantity"`
}

type worldEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type dataCenterEntry struct {
	Name   string `json:"name"`
	Region string `json:"region"`
	Worlds []int  `json:"worlds"`
}

// errorBody is the best-effort shape of an upstream error payload.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
