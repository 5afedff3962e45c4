package media

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/EgorLis/media-gate/internal/domain"
	"github.com/EgorLis/media-gate/internal/media/policy"
	"github.com/EgorLis/media-gate/internal/transport/web/logx"
	"github.com/EgorLis/media-gate/internal/transport/web/mw"
	v1 "github.com/EgorLis/media-gate/internal/transport/web/v1"
)

// Upload godoc
// @Summary     Upload lesson video
// @Description Принимает видео в multipart/form-data (поле file) и привязывает его к уроку. Только инструктор-владелец курса.
// @Tags        media
// @Accept      multipart/form-data
// @Produce     json
// @Param       lessonID path     string true "lesson id (uuid)"
// @Param       file     formData file   true "видеофайл"
// @Success     200 {object} map[string]string "{\"message\":\"...\",\"lessonId\":\"...\"}"
// @Failure     400 {object} map[string]string
// @Failure     401 {object} map[string]string
// @Failure     403 {object} map[string]string
// @Failure     404 {object} map[string]string
// @Security    BearerAuth
// @Router      /media/lessons/{lessonID}/video [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	const op = "media.upload"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, domain.ErrUnauth)
		return
	}

	lessonID, err := uuid.Parse(r.PathValue("lessonID"))
	if err != nil {
		v1.WriteDomainError(w, domain.ErrBadParams)
		return
	}

	lesson, err := h.Lessons.LessonByID(r.Context(), lessonID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "lesson lookup failed", err, "lesson_id", lessonID)
		v1.WriteDomainError(w, err)
		return
	}

	if err := policy.Upload(me, lesson); err != nil {
		logx.Error(h.Log, reqID, op, "upload denied", err, "lesson_id", lessonID, "user_id", me.ID, "role", me.Role)
		v1.WriteDomainError(w, err)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil { // 32MB в памяти, остальное во временные файлы
		logx.Error(h.Log, reqID, op, "parse form", err)
		v1.WriteError(w, http.StatusBadRequest, "invalid multipart")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		logx.Error(h.Log, reqID, op, "form file", err)
		v1.WriteError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	key, size, err := h.Store.Save(r.Context(), lessonID, file, header.Header.Get("Content-Type"), header.Filename)
	if err != nil {
		logx.Error(h.Log, reqID, op, "save failed", err, "lesson_id", lessonID, "filename", header.Filename)
		v1.WriteDomainError(w, err)
		return
	}

	loc := domain.VideoLocator{Kind: domain.LocatorLocal, Key: key}
	if err := h.Lessons.SetLessonVideo(r.Context(), lessonID, loc); err != nil {
		logx.Error(h.Log, reqID, op, "set lesson video failed", err, "lesson_id", lessonID, "key", key)
		v1.WriteDomainError(w, err)
		return
	}
	h.Issuer.InvalidateLesson(r.Context(), lessonID)

	logx.Info(h.Log, reqID, op, "ok", "lesson_id", lessonID, "key", key, "size", size)
	v1.WriteJSON(w, http.StatusOK, map[string]string{
		"message":  "Video uploaded successfully",
		"lessonId": lessonID.String(),
	})
}
