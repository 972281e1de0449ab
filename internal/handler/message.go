package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-lending/internal/model"
	"github.com/iliyamo/campus-lending/internal/repository"
)

// MessageHandler bundles dependencies for item-scoped messaging.
type MessageHandler struct {
	Items    *repository.ItemRepo
	Messages *repository.MessageRepo
}

func NewMessageHandler(items *repository.ItemRepo, messages *repository.MessageRepo) *MessageHandler {
	return &MessageHandler{Items: items, Messages: messages}
}

// ----- DTOs -----

type sendMessageReq struct {
	Text          string `json:"text"`
	ParticipantID uint64 `json:"participant_id"`
}

type messageResp struct {
	ID            uint64    `json:"id"`
	ItemID        uint64    `json:"item_id"`
	SenderID      uint64    `json:"sender_id"`
	ParticipantID uint64    `json:"participant_id"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
}

func toMessageResp(m *model.Message) messageResp {
	return messageResp{
		ID:            m.ID,
		ItemID:        m.ItemID,
		SenderID:      m.SenderID,
		ParticipantID: m.ParticipantID,
		Text:          m.Text,
		CreatedAt:     m.CreatedAt,
	}
}

// Send posts a message in an item thread. POST /v1/items/:id/messages.
// A borrower always talks to the owner, so their participant is forced
// to the owner regardless of the body. The owner names the borrower via
// participant_id; when omitted, the reply lands in the item's most
// recently active thread.
func (h *MessageHandler) Send(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req sendMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	item, err := h.Items.GetByID(ctx, itemID)
	if err != nil {
		return domainError(c, err)
	}

	var participant uint64
	if uid == item.OwnerID {
		participant = req.ParticipantID
		if participant == 0 {
			participant, err = h.Messages.LatestCounterpartyForItem(ctx, itemID, uid)
			if err != nil {
				if repository.IsNoRows(err) {
					return c.JSON(http.StatusBadRequest, echo.Map{"error": "participant_id required: no conversation exists for this item"})
				}
				return domainError(c, err)
			}
		}
		if participant == uid {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot message yourself"})
		}
	} else {
		participant = item.OwnerID
	}

	m := &model.Message{ItemID: itemID, SenderID: uid, ParticipantID: participant, Text: req.Text}
	if err := h.Messages.Create(ctx, m); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, toMessageResp(m))
}

// Thread returns the caller's conversation about an item, oldest first.
// GET /v1/items/:id/messages. A non-owner always reads their thread with
// the owner; the owner selects a borrower via ?with=<user_id>, falling
// back to the most recently active thread.
func (h *MessageHandler) Thread(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	item, err := h.Items.GetByID(ctx, itemID)
	if err != nil {
		return domainError(c, err)
	}

	var other uint64
	if uid == item.OwnerID {
		if w := strings.TrimSpace(c.QueryParam("with")); w != "" {
			other, err = strconv.ParseUint(w, 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid with parameter"})
			}
		} else {
			other, err = h.Messages.LatestCounterpartyForItem(ctx, itemID, uid)
			if err != nil {
				if repository.IsNoRows(err) {
					return c.JSON(http.StatusOK, []messageResp{})
				}
				return domainError(c, err)
			}
		}
	} else {
		other = item.OwnerID
	}

	msgs, err := h.Messages.ListThread(ctx, itemID, uid, other)
	if err != nil {
		return domainError(c, err)
	}
	resp := make([]messageResp, 0, len(msgs))
	for i := range msgs {
		resp = append(resp, toMessageResp(&msgs[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

type conversationResp struct {
	ItemID          uint64    `json:"item_id"`
	ParticipantID   uint64    `json:"participant_id"`
	ParticipantName string    `json:"participant_name"`
	LastText        string    `json:"last_text"`
	LastSenderID    uint64    `json:"last_sender_id"`
	LastCreatedAt   time.Time `json:"last_created_at"`
	MessageCount    int       `json:"message_count"`
}

// Conversations lists the caller's threads, most recently active first.
// GET /v1/conversations.
func (h *MessageHandler) Conversations(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	convs, err := h.Messages.ListConversationsForUser(ctx, uid)
	if err != nil {
		return domainError(c, err)
	}
	resp := make([]conversationResp, 0, len(convs))
	for _, cv := range convs {
		resp = append(resp, conversationResp{
			ItemID:          cv.ItemID,
			ParticipantID:   cv.ParticipantID,
			ParticipantName: cv.ParticipantName,
			LastText:        cv.LastText,
			LastSenderID:    cv.LastSenderID,
			LastCreatedAt:   cv.LastCreatedAt,
			MessageCount:    cv.MessageCount,
		})
	}
	return c.JSON(http.StatusOK, resp)
}
