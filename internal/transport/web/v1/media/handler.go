package media

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/EgorLis/media-gate/internal/domain"
	"github.com/EgorLis/media-gate/internal/media/playback"
	"github.com/EgorLis/media-gate/internal/media/signing"
)

// Store — то, что хендлерам нужно от файлового хранилища.
type Store interface {
	Save(ctx context.Context, lessonID domain.LessonID, r io.Reader, contentType, originalName string) (key string, size int64, err error)
	OpenRange(key, rangeHeader string) (rc io.ReadCloser, contentLen int64, contentRange, contentType string, err error)
}

type Handler struct {
	Log     *log.Logger
	Lessons domain.LessonsRepo
	Issuer  *playback.Issuer
	Signer  *signing.Signer
	Store   Store

	// Now подменяется в тестах; nil == time.Now
	Now func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
