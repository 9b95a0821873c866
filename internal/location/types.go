package location

// House is a monitored building. A deployment may track several.
type House struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Room is a physical space within a house.
type Room struct {
	ID      string `json:"id" yaml:"id"`
	HouseID string `json:"house_id" yaml:"house_id"`
	Name    string `json:"name" yaml:"name"`
}
