// Package policy — правила доступа к видео уроков.
// Чистые функции без побочных эффектов: факт записи на курс
// вычисляет вызывающая сторона и передаёт сюда готовым.
package policy

import (
	"github.com/EgorLis/media-gate/internal/domain"
)

// Playback решает, может ли пользователь получить ссылку на просмотр.
// Правила проверяются по порядку, первая сработавшая — итог:
//  1. админ — всегда можно;
//  2. инструктор — только свои курсы;
//  3. студент — только при записи на курс;
//  4. всё остальное — отказ.
func Playback(u domain.User, lesson domain.Lesson, enrolled bool) error {
	switch u.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleInstructor:
		if lesson.InstructorID == u.ID {
			return nil
		}
		return domain.Forbiddenf("You can only access your own course videos")
	case domain.RoleStudent:
		if enrolled {
			return nil
		}
		return domain.Forbiddenf("You must be enrolled to access this video")
	default:
		return domain.Forbiddenf("Access denied")
	}
}

// Upload решает, может ли пользователь загрузить видео к уроку.
// Загрузка уже — только инструктор-владелец курса, админам не даётся.
func Upload(u domain.User, lesson domain.Lesson) error {
	if u.Role != domain.RoleInstructor {
		return domain.Forbiddenf("Only instructors can upload lesson videos")
	}
	if lesson.InstructorID != u.ID {
		return domain.Forbiddenf("You can only upload videos to your own courses")
	}
	return nil
}
