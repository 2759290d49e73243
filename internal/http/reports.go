package http

import (
	"net/http"
	"strconv"
	"strings"

	echo "github.com/labstack/echo/v4"

	"github.com/meetpipe/meeting-gateway/internal/repository"
)

// listArchivedResultsHandler serves historical processed results from
// ClickHouse. The in-memory store only holds the current record per meeting;
// the archive keeps everything.
func listArchivedResultsHandler(archive repository.ResultArchiveRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		platform := strings.TrimSpace(c.QueryParam("platform"))
		kind := strings.TrimSpace(c.QueryParam("kind"))

		limit := 50
		offset := 0
		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}
		if v := c.QueryParam("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		rows, err := archive.List(c.Request().Context(), platform, kind, limit, offset)
		if err != nil {
			c.Logger().Errorf("clickhouse list failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"limit":   limit,
			"offset":  offset,
			"count":   len(rows),
			"results": rows,
		})
	}
}
