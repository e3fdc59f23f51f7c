package pagination

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Bounds configures how one endpoint reads its paging parameters.
type Bounds struct {
	DefaultLimit int
	MaxLimit     int
}

// Query holds parsed pagination parameters.
type Query struct {
	Page  int
	Limit int
}

// PageFromContext reads ?page and ?limit. Out-of-range or malformed values are
// errors rather than silently clamped.
func PageFromContext(c *gin.Context, b Bounds) (Query, error) {
	page, err := parseInt(c, "page", 1)
	if err != nil {
		return Query{}, err
	}
	if page < 1 {
		return Query{}, fmt.Errorf("page must be >= 1")
	}
	limit, err := parseLimit(c, b)
	if err != nil {
		return Query{}, err
	}
	return Query{Page: page, Limit: limit}, nil
}

// Window holds skip/limit parameters.
type Window struct {
	Skip  int
	Limit int
}

// WindowFromContext reads ?skip and ?limit.
func WindowFromContext(c *gin.Context, b Bounds) (Window, error) {
	skip, err := parseInt(c, "skip", 0)
	if err != nil {
		return Window{}, err
	}
	if skip < 0 {
		return Window{}, fmt.Errorf("skip must be >= 0")
	}
	limit, err := parseLimit(c, b)
	if err != nil {
		return Window{}, err
	}
	return Window{Skip: skip, Limit: limit}, nil
}

func parseLimit(c *gin.Context, b Bounds) (int, error) {
	limit, err := parseInt(c, "limit", b.DefaultLimit)
	if err != nil {
		return 0, err
	}
	if limit < 1 || limit > b.MaxLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", b.MaxLimit)
	}
	return limit, nil
}

func parseInt(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
