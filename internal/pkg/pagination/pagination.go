package pagination

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"feed/internal/pkg/validation"
)

// Errors
var (
	ErrInvalidPage     = errors.New("page must be a positive integer")
	ErrInvalidPageSize = errors.New("per_page must be a positive integer")
	ErrPageOutOfRange  = errors.New("page is too large")
)

const (
	DefaultPage     = 1
	DefaultPageSize = 30
	MaxPageSize     = 100

	// MaxOffset is the largest row offset postgres accepts as an int4 parameter.
	MaxOffset = math.MaxInt32
)

// OffsetRequest represents a page/per_page request. Unlike a lenient
// request it never replaces bad values with defaults.
type OffsetRequest struct {
	Page     int `json:"page" validate:"min=1"`
	PageSize int `json:"per_page" validate:"min=1,max=100"`
}

// NewOffsetRequest validates page and pageSize. A page whose offset does not fit
// in MaxOffset is rejected.
func NewOffsetRequest(page, pageSize int) (*OffsetRequest, error) {
	req := &OffsetRequest{Page: page, PageSize: pageSize}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if int64(page-1) > MaxOffset/int64(pageSize) {
		return nil, fmt.Errorf("%w: offset of page %d exceeds %d", ErrPageOutOfRange, page, MaxOffset)
	}
	return req, nil
}

// ParseOffsetRequest parses raw query values. An omitted value takes its default;
// a present but malformed value is an error.
func ParseOffsetRequest(page, pageSize string) (*OffsetRequest, error) {
	p, err := parsePositive(page, DefaultPage)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPage, page)
	}
	ps, err := parsePositive(pageSize, DefaultPageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPageSize, pageSize)
	}
	return NewOffsetRequest(p, ps)
}

// GetOffset returns the offset for SQL query
func (r *OffsetRequest) GetOffset() int {
	return (r.Page - 1) * r.PageSize
}

// GetLimit returns the row limit for SQL query
func (r *OffsetRequest) GetLimit() int {
	return r.PageSize
}

// ParseLimit parses an optional positive limit bounded by max.
func ParseLimit(raw string, def, max int) (int, error) {
	n, err := parsePositive(raw, def)
	if err != nil || n > max {
		return 0, fmt.Errorf("limit must be an integer between 1 and %d: %q", max, raw)
	}
	return n, nil
}

func parsePositive(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("non-positive value %d", n)
	}
	return n, nil
}
