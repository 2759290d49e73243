package http

import (
	"net/http"
	"strconv"
	"strings"

	echo "github.com/labstack/echo/v4"

	"github.com/meetpipe/meeting-gateway/internal/store"
)

// Result read handlers serve from the in-memory store only; no database
// round-trips on the live path.

func getSummaryHandler(st *store.ResultStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := strings.TrimSpace(c.Param("id"))
		v, ok := st.GetSummary(id)
		if !ok {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "summary not found"})
		}
		return c.JSON(http.StatusOK, v)
	}
}

func getTranscriptionHandler(st *store.ResultStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := strings.TrimSpace(c.Param("id"))
		v, ok := st.GetTranscription(id)
		if !ok {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "transcription not found"})
		}
		return c.JSON(http.StatusOK, v)
	}
}

func getActionItemsHandler(st *store.ResultStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := strings.TrimSpace(c.Param("id"))
		v, ok := st.GetActionItems(id)
		if !ok {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "action items not found"})
		}
		return c.JSON(http.StatusOK, v)
	}
}

func listSummariesHandler(st *store.ResultStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		platform := strings.TrimSpace(c.QueryParam("platform"))

		limit := 0
		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}

		var results any
		switch {
		case platform != "":
			results = st.SummariesByPlatform(platform)
		case limit > 0:
			results = st.RecentSummaries(limit)
		default:
			results = st.AllSummaries()
		}

		return c.JSON(http.StatusOK, map[string]any{"results": results})
	}
}

func listActionItemsHandler(st *store.ResultStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"results": st.AllActionItems()})
	}
}

func dashboardStatsHandler(st *store.ResultStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, st.Statistics())
	}
}

// clearMeetingCacheHandler drops the three cached result kinds for a meeting,
// typically after completion.
func clearMeetingCacheHandler(st *store.ResultStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := strings.TrimSpace(c.Param("id"))
		if id == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "meeting id required"})
		}
		st.Clear(id)
		return c.JSON(http.StatusOK, map[string]any{
			"cleared":   true,
			"meetingId": id,
		})
	}
}
