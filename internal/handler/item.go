package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-lending/internal/model"
	"github.com/iliyamo/campus-lending/internal/repository"
)

// ItemHandler bundles dependencies for item listing endpoints.
type ItemHandler struct {
	Items *repository.ItemRepo
}

func NewItemHandler(items *repository.ItemRepo) *ItemHandler {
	return &ItemHandler{Items: items}
}

// ----- DTOs -----

type itemReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Condition   *string `json:"condition"`
	ImageURL    *string `json:"image_url"`
	Location    *string `json:"location"`
}

type itemResp struct {
	ID          uint64    `json:"id"`
	OwnerID     uint64    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Condition   string    `json:"condition,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Location    string    `json:"location,omitempty"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toItemResp(it *model.Item) itemResp {
	return itemResp{
		ID:          it.ID,
		OwnerID:     it.OwnerID,
		Title:       it.Title,
		Description: it.Description,
		Category:    it.Category,
		Condition:   it.Condition,
		ImageURL:    it.ImageURL,
		Location:    it.Location,
		Available:   it.Available,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

// Create registers a new listing owned by the caller.
func (h *ItemHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req itemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}

	it := &model.Item{OwnerID: uid, Title: strings.TrimSpace(*req.Title)}
	applyItemReq(it, &req)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Items.Create(ctx, it); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, toItemResp(it))
}

// Get returns one listing. Public: guests can inspect an item before
// registering.
func (h *ItemHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	it, err := h.Items.GetByID(ctx, id)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toItemResp(it))
}

// List returns listings filtered by the query string. Public. Supported
// parameters: category, q or search (title/description substring) and
// available=true|false.
func (h *ItemHandler) List(c echo.Context) error {
	f := repository.ItemFilter{
		Category: strings.TrimSpace(c.QueryParam("category")),
		Search:   strings.TrimSpace(c.QueryParam("q")),
	}
	if f.Search == "" {
		f.Search = strings.TrimSpace(c.QueryParam("search"))
	}
	switch c.QueryParam("available") {
	case "true":
		v := true
		f.Available = &v
	case "false":
		v := false
		f.Available = &v
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Items.List(ctx, f)
	if err != nil {
		return domainError(c, err)
	}
	resp := make([]itemResp, 0, len(items))
	for i := range items {
		resp = append(resp, toItemResp(&items[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// ListMine returns the caller's own listings, lent-out ones included.
func (h *ItemHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Items.List(ctx, repository.ItemFilter{OwnerID: uid})
	if err != nil {
		return domainError(c, err)
	}
	resp := make([]itemResp, 0, len(items))
	for i := range items {
		resp = append(resp, toItemResp(&items[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// Update changes listing fields on the caller's item. Only fields
// present in the body are touched; availability is owned by the borrow
// lifecycle and cannot be set here.
func (h *ItemHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req itemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title must not be empty"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	it, err := h.Items.GetByID(ctx, id)
	if err != nil {
		return domainError(c, err)
	}
	if req.Title != nil {
		it.Title = strings.TrimSpace(*req.Title)
	}
	applyItemReq(it, &req)
	if err := h.Items.UpdateByIDAndOwner(ctx, it, uid); err != nil {
		return domainError(c, err)
	}
	got, err := h.Items.GetByID(ctx, id)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toItemResp(got))
}

// Delete removes the caller's listing along with its pending requests
// and message threads. Refused while the item is lent out.
func (h *ItemHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Items.DeleteByIDAndOwner(ctx, id, uid); err != nil {
		return domainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func applyItemReq(it *model.Item, req *itemReq) {
	if req.Description != nil {
		it.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		it.Category = strings.TrimSpace(*req.Category)
	}
	if req.Condition != nil {
		it.Condition = strings.TrimSpace(*req.Condition)
	}
	if req.ImageURL != nil {
		it.ImageURL = strings.TrimSpace(*req.ImageURL)
	}
	if req.Location != nil {
		it.Location = strings.TrimSpace(*req.Location)
	}
}
