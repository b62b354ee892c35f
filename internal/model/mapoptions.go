package model

// MapOptions holds the base map styling for the web viewer and the initial
// viewport of the terminal map.
type MapOptions struct {
	Center      LatLng  `json:"center"`
	Zoom        int     `json:"zoom"`
	MinZoom     int     `json:"minZoom"`
	MaxZoom     int     `json:"maxZoom"`
	TileURL     string  `json:"tileUrl"`
	Attribution string  `json:"attribution"`
	TileOpacity float64 `json:"opacity"`
}

var DefaultMapOptions = MapOptions{
	Center:      LatLng{Lat: 4.5709, Lng: -74.2973},
	Zoom:        6,
	MinZoom:     3,
	MaxZoom:     16,
	TileURL:     "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
	Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
	TileOpacity: 0.5,
}
