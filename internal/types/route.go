package types

// Route is an address pair whose travel distance prices a home visit or walk.
// Points are optional and only feed the fallback estimate.
type Route struct {
	Origin           string `json:"origin"`
	Destination      string `json:"destination"`
	OriginPoint      *Point `json:"origin_point,omitempty"`
	DestinationPoint *Point `json:"destination_point,omitempty"`
}

// Distance is a resolved route length. Estimated is set when the provider
// could not be used and the value is a fallback.
type Distance struct {
	Km        float64 `json:"km"`
	Estimated bool    `json:"estimated"`
	Source    string  `json:"source"`
}
