package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-service/internal/repository"
)

// ListMessages handles GET /admin/api/messages[?unread=true&limit=n].
func (h *AdminHandler) ListMessages(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	msgs, err := h.Messages.List(c.Request().Context(), c.QueryParam("unread") == "true", limit)
	if err != nil {
		h.Logger.Error().Err(err).Msg("message list failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load messages"})
	}
	out := make([]echo.Map, len(msgs))
	for i, m := range msgs {
		out[i] = echo.Map{"message": m, "created_local": h.Fmt.Time(m.CreatedAt)}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out, "count": len(out)})
}

// MarkMessageRead handles POST /admin/api/messages/:id/read.
func (h *AdminHandler) MarkMessageRead(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message id"})
	}
	switch err := h.Messages.MarkRead(c.Request().Context(), id); {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "message not found"})
	default:
		h.Logger.Error().Err(err).Uint64("message_id", id).Msg("mark read failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "please try again"})
	}
}
