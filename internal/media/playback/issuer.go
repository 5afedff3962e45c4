// Package playback — выдача дескрипторов воспроизведения:
// проверка доступа и сборка подписанной ссылки на stream-эндпоинт.
package playback

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/EgorLis/media-gate/internal/domain"
	"github.com/EgorLis/media-gate/internal/media/policy"
	"github.com/EgorLis/media-gate/internal/media/signing"
)

// метаданные урока живут в кеше недолго: ровно чтобы снять
// нагрузку с БД на горячем пути плеера
const lessonMetaTTLSeconds = 60

// StreamPathFormat — шаблон пути stream-эндпоинта (%s — id урока).
const StreamPathFormat = "/media/lessons/%s/stream"

type Issuer struct {
	logger      *log.Logger
	lessons     domain.LessonsRepo
	enrollments domain.EnrollmentsRepo
	cache       domain.Cache
	signer      *signing.Signer
	ttlSeconds  int64
	now         func() time.Time
}

func New(logger *log.Logger, lessons domain.LessonsRepo, enrollments domain.EnrollmentsRepo,
	cache domain.Cache, signer *signing.Signer, ttlSeconds int64) *Issuer {
	return &Issuer{
		logger:      logger,
		lessons:     lessons,
		enrollments: enrollments,
		cache:       cache,
		signer:      signer,
		ttlSeconds:  ttlSeconds,
		now:         time.Now,
	}
}

// Issue выдаёт дескриптор воспроизведения для пользователя.
// Ошибки: ErrNotFound (нет урока), ErrForbidden (политика),
// ErrBadParams (у урока нет видео).
func (i *Issuer) Issue(ctx context.Context, lessonID domain.LessonID, u domain.User) (domain.PlaybackDescriptor, error) {
	lesson, err := i.lesson(ctx, lessonID)
	if err != nil {
		return domain.PlaybackDescriptor{}, err
	}

	// запись на курс интересна только для студентов
	enrolled := false
	if u.Role == domain.RoleStudent {
		enrolled, err = i.enrollments.IsEnrolled(ctx, u.ID, lesson.CourseID)
		if err != nil {
			return domain.PlaybackDescriptor{}, fmt.Errorf("%w: enrollment check: %v", domain.ErrUnexpected, err)
		}
	}

	if err := policy.Playback(u, lesson, enrolled); err != nil {
		return domain.PlaybackDescriptor{}, err
	}

	switch lesson.Video.Kind {
	case domain.LocatorExternal:
		// доверенный внешний хост — отдаём как есть, без подписи
		return domain.PlaybackDescriptor{URL: lesson.Video.URL, External: true}, nil

	case domain.LocatorLocal:
		exp := i.now().Unix() + i.ttlSeconds
		key := lesson.Video.Key
		sig := i.signer.Sign(signing.Payload(lessonID, exp, key))
		streamURL := fmt.Sprintf(StreamPathFormat+"?exp=%d&sig=%s&key=%s",
			lessonID, exp, sig, url.QueryEscape(key))
		return domain.PlaybackDescriptor{URL: streamURL}, nil

	default:
		return domain.PlaybackDescriptor{}, fmt.Errorf("%w: lesson has no video", domain.ErrBadParams)
	}
}

// lessonMeta — то, что кладём в кеш: ровно поля, нужные выдаче.
type lessonMeta struct {
	CourseID     domain.CourseID `json:"course_id"`
	InstructorID domain.UserID   `json:"instructor_id"`
	RawLocator   string          `json:"video"`
}

func (i *Issuer) lesson(ctx context.Context, id domain.LessonID) (domain.Lesson, error) {
	cacheKey := domain.CacheKeyLessonMeta(id)

	if b, err := i.cache.Get(ctx, cacheKey); err == nil && len(b) > 0 {
		var m lessonMeta
		if err := json.Unmarshal(b, &m); err == nil {
			if loc, err := domain.ParseLocator(m.RawLocator); err == nil {
				return domain.Lesson{ID: id, CourseID: m.CourseID, InstructorID: m.InstructorID, Video: loc}, nil
			}
		}
	}

	lesson, err := i.lessons.LessonByID(ctx, id)
	if err != nil {
		return domain.Lesson{}, err
	}

	m := lessonMeta{CourseID: lesson.CourseID, InstructorID: lesson.InstructorID, RawLocator: lesson.Video.Raw()}
	if b, err := json.Marshal(m); err == nil {
		if err := i.cache.Set(ctx, cacheKey, b, lessonMetaTTLSeconds); err != nil {
			i.logger.Printf("cache set %s failed: %v", cacheKey, err)
		}
	}
	return lesson, nil
}

// InvalidateLesson сбрасывает кешированные метаданные урока
// (вызывается после загрузки нового видео).
func (i *Issuer) InvalidateLesson(ctx context.Context, id domain.LessonID) {
	if err := i.cache.Del(ctx, domain.CacheKeyLessonMeta(id)); err != nil {
		i.logger.Printf("cache del lesson %s failed: %v", id, err)
	}
}
