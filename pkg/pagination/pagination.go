package pagination

import (
	"net/url"
	"strconv"
)

const (
	// DefaultSize is the standard page size when one is not provided.
	DefaultSize = 20
	// MaxSize caps how many rows any listing can request.
	MaxSize = 100
)

// Params holds page/size pagination inputs from controllers.
type Params struct {
	Page int
	Size int
}

// FromQuery reads page/size from listing query parameters.
func FromQuery(values url.Values) Params {
	return Params{
		Page: intValue(values.Get("page")),
		Size: intValue(values.Get("size")),
	}
}

// Normalize enforces the configured defaults and maximums.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	return p
}

func intValue(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
