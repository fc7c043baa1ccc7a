package sector

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("sector not found")

// Sector is a named subdivision of a restaurant (e.g. "Main Hall"). Owned
// by exactly one restaurant; every reservation belongs to exactly one
// sector.
type Sector struct {
	ID           string
	RestaurantID string
	Name         string
	CreatedAt    time.Time
}
