package ofdb

import "strconv"

// Entry is a full directory record as served by /entries.
// Created is Unix seconds, as the API encodes timestamps.
type Entry struct {
	ID           string   `json:"id"`
	Created      int64    `json:"created"`
	Version      int      `json:"version"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Lat          float64  `json:"lat"`
	Lng          float64  `json:"lng"`
	Street       string   `json:"street,omitempty"`
	Zip          string   `json:"zip,omitempty"`
	City         string   `json:"city,omitempty"`
	Country      string   `json:"country,omitempty"`
	State        string   `json:"state,omitempty"`
	ContactName  string   `json:"contact_name,omitempty"`
	Email        string   `json:"email,omitempty"`
	Telephone    string   `json:"telephone,omitempty"`
	Homepage     string   `json:"homepage,omitempty"`
	OpeningHours string   `json:"opening_hours,omitempty"`
	FoundedOn    string   `json:"founded_on,omitempty"`
	License      string   `json:"license"`
	ImageURL     string   `json:"image_url,omitempty"`
	ImageLinkURL string   `json:"image_link_url,omitempty"`
	Categories   []string `json:"categories"`
	Tags         []string `json:"tags"`
	Ratings      []string `json:"ratings,omitempty"`
}

// SearchHit is the abbreviated record returned by /search.
type SearchHit struct {
	ID          string   `json:"id"`
	Status      string   `json:"status,omitempty"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// SearchResult groups hits by visibility inside the searched bounding box.
type SearchResult struct {
	Visible   []SearchHit `json:"visible"`
	Invisible []SearchHit `json:"invisible"`
}

// BBox is a bounding box in the comma format the directory expects:
// "latMin,lngMin,latMax,lngMax".
type BBox struct {
	LatMin float64
	LngMin float64
	LatMax float64
	LngMax float64
}

func (b BBox) String() string {
	return coord(b.LatMin) + "," + coord(b.LngMin) + "," + coord(b.LatMax) + "," + coord(b.LngMax)
}

func coord(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
