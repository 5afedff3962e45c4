package domain

import (
	"context"
)

// Каталог (пользователи/курсы/уроки/записи) — внешние коллабораторы
// по отношению к медиа-ядру. Реализация — internal/infra/database/postgres.

type UsersRepo interface {
	Close()
	Ping(context.Context) error
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByID(ctx context.Context, id UserID) (User, error)
}

type LessonsRepo interface {
	// LessonByID возвращает урок вместе с курсом и его инструктором.
	LessonByID(ctx context.Context, id LessonID) (Lesson, error)
	// SetLessonVideo перезаписывает локатор видео урока.
	SetLessonVideo(ctx context.Context, id LessonID, loc VideoLocator) error
}

type EnrollmentsRepo interface {
	IsEnrolled(ctx context.Context, studentID UserID, courseID CourseID) (bool, error)
}
