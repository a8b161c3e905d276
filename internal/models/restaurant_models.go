package models

import "time"

// Restaurant as consumed by the order and review flows. Rating and
// ReviewCount are derived from the restaurant's review set and are only ever
// written by the rating aggregator, never by general update paths.
type Restaurant struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	CityID      string    `json:"city_id"`
	Address     string    `json:"address"`
	Lat         *float64  `json:"lat,omitempty"`
	Lng         *float64  `json:"lng,omitempty"`
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"review_count"`
	DeliveryFee float64   `json:"delivery_fee"`
	IsOpen      bool      `json:"is_open"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MenuItem is a dish offered by a restaurant. Options are attached when the
// menu is listed.
type MenuItem struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Price        float64   `json:"price"`
	Category     string    `json:"category,omitempty"`
	IsAvailable  bool      `json:"is_available"`
	Options      []Option  `json:"options,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Option is an add-on selectable for a menu item (extra cheese, size, ...).
type Option struct {
	ID         string  `json:"id"`
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
}

// City is a supported delivery city.
type City struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category is a cuisine category used for restaurant discovery.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RestaurantQuery captures the discovery filters of GET /restaurants.
type RestaurantQuery struct {
	City        string   // city ID or plain name, resolve-or-fallback
	Search      string   // free-text query, served by Elasticsearch
	Lat, Lng    *float64 // nearest-neighbor discovery
	MaxDistance float64  // meters; only used when Lat/Lng are set
	Page, Limit int
}
