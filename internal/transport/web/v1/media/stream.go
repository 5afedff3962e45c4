package media

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/EgorLis/media-gate/internal/domain"
	"github.com/EgorLis/media-gate/internal/media/signing"
	"github.com/EgorLis/media-gate/internal/transport/web/logx"
	"github.com/EgorLis/media-gate/internal/transport/web/mw"
)

// Stream godoc
// @Summary     Stream lesson video chunk
// @Description Отдаёт окно файла (не больше 1 МиБ) по подписанной ссылке. Сам токен в query и есть учётные данные — заголовок Authorization не нужен.
// @Tags        media
// @Produce     octet-stream
// @Param       lessonID path  string true "lesson id (uuid)"
// @Param       exp      query int    true "expiry (unix seconds)"
// @Param       sig      query string true "hmac signature (hex)"
// @Param       key      query string true "storage key"
// @Param       Range    header string false "bytes range"
// @Success     200 {file} []byte
// @Success     206 {file} []byte
// @Failure     403 "token expired or signature mismatch"
// @Failure     404 "file not found"
// @Router      /media/lessons/{lessonID}/stream [get]
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	const op = "media.stream"
	reqID := mw.RequestIDFromCtx(r.Context())

	lessonID, err := uuid.Parse(r.PathValue("lessonID"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	exp, err := strconv.ParseInt(q.Get("exp"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	sig := q.Get("sig")
	key := q.Get("key")

	// Просроченный токен и битая подпись наружу неразличимы:
	// голый 403 без указания, какая именно проверка не прошла.
	if exp <= h.now().Unix() {
		logx.Info(h.Log, reqID, op, "token expired", "lesson_id", lessonID)
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if !h.Signer.Verify(signing.Payload(lessonID, exp, key), sig) {
		logx.Info(h.Log, reqID, op, "signature mismatch", "lesson_id", lessonID)
		w.WriteHeader(http.StatusForbidden)
		return
	}

	rc, contentLen, contentRange, contentType, err := h.Store.OpenRange(key, r.Header.Get("Range"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
		case errors.Is(err, domain.ErrInvalidKey):
			// ключ с подписью, но вне корня — не раскрываем деталей
			w.WriteHeader(http.StatusForbidden)
		default:
			logx.Error(h.Log, reqID, op, "open failed", err, "lesson_id", lessonID)
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(contentLen, 10))
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Cache-Control", "no-store")

	if contentRange != "" {
		w.Header().Set("Content-Range", contentRange)
		w.WriteHeader(http.StatusPartialContent)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if _, err := io.Copy(w, rc); err != nil {
		// клиент оборвал соединение или диск — заголовки уже ушли
		logx.Error(h.Log, reqID, op, "copy failed", err, "lesson_id", lessonID)
	}
}
