package media

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/EgorLis/media-gate/internal/domain"
	"github.com/EgorLis/media-gate/internal/transport/web/logx"
	"github.com/EgorLis/media-gate/internal/transport/web/mw"
	v1 "github.com/EgorLis/media-gate/internal/transport/web/v1"
)

// Playback godoc
// @Summary     Get lesson playback URL
// @Description Возвращает либо внешний URL видео, либо короткоживущую подписанную ссылку на stream-эндпоинт.
// @Tags        media
// @Produce     json
// @Param       lessonID path string true "lesson id (uuid)"
// @Success     200 {object} map[string]string "{\"url\":\"...\"}"
// @Failure     400 {object} map[string]string
// @Failure     401 {object} map[string]string
// @Failure     403 {object} map[string]string
// @Failure     404 {object} map[string]string
// @Security    BearerAuth
// @Router      /media/lessons/{lessonID}/playback [get]
func (h *Handler) Playback(w http.ResponseWriter, r *http.Request) {
	const op = "media.playback"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, domain.ErrUnauth)
		return
	}

	lessonID, err := uuid.Parse(r.PathValue("lessonID"))
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad lesson id", err, "raw", r.PathValue("lessonID"))
		v1.WriteDomainError(w, domain.ErrBadParams)
		return
	}

	d, err := h.Issuer.Issue(r.Context(), lessonID, me)
	if err != nil {
		logx.Error(h.Log, reqID, op, "issue failed", err, "lesson_id", lessonID, "user_id", me.ID, "role", me.Role)
		v1.WriteDomainError(w, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "lesson_id", lessonID, "external", d.External)
	v1.WriteJSON(w, http.StatusOK, map[string]string{"url": d.URL})
}
