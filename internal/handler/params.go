package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/informaticaucm/seguimiento-api/pkg/errors"
)

// pathID parses a positive int64 path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrInvalidID, name+" must be a positive integer")
	}
	return id, nil
}

// queryTime parses an optional RFC 3339 query parameter. A missing value
// yields the zero time.
func queryTime(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrInvalidTimestamp, name+" must be an RFC 3339 timestamp")
	}
	return t.UTC(), nil
}
