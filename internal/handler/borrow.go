package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-lending/internal/lending"
	"github.com/iliyamo/campus-lending/internal/model"
	"github.com/iliyamo/campus-lending/internal/service"
)

// BorrowHandler bundles dependencies for borrow lifecycle endpoints.
type BorrowHandler struct {
	Borrow *service.BorrowService
}

func NewBorrowHandler(b *service.BorrowService) *BorrowHandler {
	return &BorrowHandler{Borrow: b}
}

// ----- DTOs -----

type borrowCreateReq struct {
	BorrowStartDate string            `json:"borrow_start_date"`
	BorrowEndDate   string            `json:"borrow_end_date"`
	BorrowStartTime string            `json:"borrow_start_time"`
	Duration        *lending.Duration `json:"duration"`
	ExactReturn     string            `json:"exact_return_datetime"`
}

type borrowResp struct {
	ID             uint64                 `json:"id"`
	ItemID         uint64                 `json:"item_id"`
	BorrowerID     uint64                 `json:"borrower_id"`
	OwnerID        uint64                 `json:"owner_id"`
	Status         string                 `json:"status"`
	StartDate      lending.LocalDate      `json:"borrow_start_date"`
	EndDate        lending.LocalDate      `json:"borrow_end_date"`
	StartTime      *string                `json:"borrow_start_time,omitempty"`
	Duration       *lending.Duration      `json:"duration,omitempty"`
	ReturnDeadline *lending.LocalDateTime `json:"return_deadline_datetime,omitempty"`
	PickedUpAt     *lending.LocalDateTime `json:"picked_up_at,omitempty"`
	RequestDate    time.Time              `json:"request_date"`
}

// toBorrowResp maps a row to the wire shape with the display deadline
// resolved: the stored value after pickup, a provisional estimate or
// the end-of-day fallback before it.
func toBorrowResp(r *model.BorrowRequest) borrowResp {
	resp := borrowResp{
		ID:          r.ID,
		ItemID:      r.ItemID,
		BorrowerID:  r.BorrowerID,
		OwnerID:     r.OwnerID,
		Status:      r.Status,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		PickedUpAt:  r.PickedUpAt,
		RequestDate: r.RequestDate,
	}
	if r.StartTime != nil {
		s := r.StartTime.String()
		resp.StartTime = &s
	}
	if d, has := r.Duration(); has {
		dd := d
		resp.Duration = &dd
	}
	resp.ReturnDeadline = lending.ResolveReturnDeadline(r.DeadlineInput())
	return resp
}

// Create submits a borrow request for an item. POST /v1/items/:id/borrow.
func (h *BorrowHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req borrowCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	in := service.CreateBorrowInput{
		ItemID:     itemID,
		BorrowerID: uid,
		Duration:   req.Duration,
	}
	if s := strings.TrimSpace(req.BorrowStartDate); s != "" {
		d, err := lending.ParseLocalDate(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		in.StartDate = d
	}
	if s := strings.TrimSpace(req.BorrowEndDate); s != "" {
		d, err := lending.ParseLocalDate(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		in.EndDate = d
	}
	if s := strings.TrimSpace(req.BorrowStartTime); s != "" {
		t, err := lending.ParseTimeOfDay(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		in.StartTime = &t
	}
	if s := strings.TrimSpace(req.ExactReturn); s != "" {
		dt, err := lending.ParseLocalDateTime(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		in.ExactReturn = &dt
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	created, err := h.Borrow.Create(ctx, in)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, toBorrowResp(created))
}

// ListMine returns the caller's outgoing requests, optionally narrowed
// by ?status=. GET /v1/borrow/mine.
func (h *BorrowHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	list, err := h.Borrow.ListOutgoing(ctx, uid, strings.TrimSpace(c.QueryParam("status")))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ListIncoming returns requests targeting the caller's items, optionally
// narrowed by ?status=. GET /v1/borrow/incoming.
func (h *BorrowHandler) ListIncoming(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	list, err := h.Borrow.ListIncoming(ctx, uid, strings.TrimSpace(c.QueryParam("status")))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Get returns one request to a party of it. GET /v1/borrow/:id.
func (h *BorrowHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	d, err := h.Borrow.GetForViewer(ctx, id, uid)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Approve accepts a pending request. POST /v1/borrow/:id/approve.
func (h *BorrowHandler) Approve(c echo.Context) error {
	return h.transition(c, h.Borrow.Approve)
}

// Reject declines a pending request. POST /v1/borrow/:id/reject.
func (h *BorrowHandler) Reject(c echo.Context) error {
	return h.transition(c, h.Borrow.Reject)
}

// MarkReturned closes an approved loan. POST /v1/borrow/:id/mark-returned.
func (h *BorrowHandler) MarkReturned(c echo.Context) error {
	return h.transition(c, h.Borrow.MarkReturned)
}

func (h *BorrowHandler) transition(c echo.Context, fn func(context.Context, uint64, uint64) (*model.BorrowRequest, error)) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	req, err := fn(ctx, id, uid)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toBorrowResp(req))
}

// MarkPickedUp records the handoff at the server clock.
// POST /v1/borrow/:id/mark-picked-up.
func (h *BorrowHandler) MarkPickedUp(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	req, err := h.Borrow.MarkPickedUp(ctx, id, uid, time.Now())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toBorrowResp(req))
}

// Cancel withdraws the caller's own pending request.
// POST /v1/borrow/:id/cancel.
func (h *BorrowHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Borrow.Cancel(ctx, id, uid); err != nil {
		return domainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
