package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-lending/internal/recommend"
	"github.com/iliyamo/campus-lending/internal/repository"
)

// RecommendationHandler serves seasonal item recommendations.
type RecommendationHandler struct {
	Items *repository.ItemRepo
}

func NewRecommendationHandler(items *repository.ItemRepo) *RecommendationHandler {
	return &RecommendationHandler{Items: items}
}

type recommendationResp struct {
	Items       []itemResp       `json:"items"`
	Period      recommend.Period `json:"period"`
	Explanation string           `json:"explanation"`
}

// Get returns up to five available items ranked for the current
// academic period. GET /v1/recommendations. Query parameters:
//
//	limit  – result count, clamped to [1,5], default 3
//	period – override the calendar classification (for testing)
func (h *RecommendationHandler) Get(c echo.Context) error {
	limit := 0
	supplied := false
	if s := strings.TrimSpace(c.QueryParam("limit")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
		supplied = true
	}
	limit = recommend.ClampLimit(limit, supplied)

	period := recommend.CurrentPeriod(time.Now())
	if s := strings.TrimSpace(c.QueryParam("period")); s != "" {
		p := recommend.Period(s)
		if !recommend.ValidPeriod(p) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown period"})
		}
		period = p
	}

	available := true
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Items.List(ctx, repository.ItemFilter{Available: &available})
	if err != nil {
		return domainError(c, err)
	}
	if len(items) == 0 {
		return c.JSON(http.StatusOK, recommendationResp{
			Items:       []itemResp{},
			Period:      period,
			Explanation: "No items available for recommendations.",
		})
	}

	candidates := make([]recommend.Candidate, 0, len(items))
	byID := make(map[uint64]int, len(items))
	for i := range items {
		candidates = append(candidates, recommend.Candidate{
			ID:          items[i].ID,
			Title:       items[i].Title,
			Description: items[i].Description,
			Category:    items[i].Category,
		})
		byID[items[i].ID] = i
	}
	picked := recommend.Pick(candidates, period, limit)

	resp := recommendationResp{
		Items:       make([]itemResp, 0, len(picked)),
		Period:      period,
		Explanation: recommend.Explanation(period),
	}
	for _, id := range picked {
		resp.Items = append(resp.Items, toItemResp(&items[byID[id]]))
	}
	return c.JSON(http.StatusOK, resp)
}
