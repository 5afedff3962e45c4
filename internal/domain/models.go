package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Базовые идентификаторы
type UserID = uuid.UUID
type CourseID = uuid.UUID
type LessonID = uuid.UUID

// Роли — закрытый набор, сверяется точным сравнением
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleStudent    Role = "student"
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(s)) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleInstructor:
		return RoleInstructor, nil
	case RoleStudent:
		return RoleStudent, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Пользователь
type User struct {
	ID        UserID    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	PassHash  string    `json:"-"` // никогда не отдаём наружу
	CreatedAt time.Time `json:"created_at"`
}

// Урок. InstructorID денормализован из курса — он нужен
// каждой проверке доступа, лишний запрос ни к чему.
type Lesson struct {
	ID           LessonID
	CourseID     CourseID
	InstructorID UserID
	Title        string
	Video        VideoLocator
}

// ---- Локатор видео ----

// Сырой формат в БД: "" | "local:<key>" | "http(s)://...".
// Парсим один раз на границе репозитория, дальше по коду
// никто префиксы не нюхает.

type LocatorKind int

const (
	LocatorNone LocatorKind = iota // видео не задано
	LocatorExternal
	LocatorLocal
)

type VideoLocator struct {
	Kind LocatorKind
	URL  string // для LocatorExternal
	Key  string // для LocatorLocal: относительный ключ вида lessons/<id>/<file>
}

const localPrefix = "local:"

func ParseLocator(raw string) (VideoLocator, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return VideoLocator{Kind: LocatorNone}, nil
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return VideoLocator{Kind: LocatorExternal, URL: raw}, nil
	case strings.HasPrefix(raw, localPrefix):
		key := raw[len(localPrefix):]
		if key == "" {
			return VideoLocator{}, fmt.Errorf("empty local key")
		}
		return VideoLocator{Kind: LocatorLocal, Key: key}, nil
	default:
		return VideoLocator{}, fmt.Errorf("unrecognized video locator %q", raw)
	}
}

// Raw возвращает строку для хранения в БД (обратная операция к ParseLocator).
func (l VideoLocator) Raw() string {
	switch l.Kind {
	case LocatorExternal:
		return l.URL
	case LocatorLocal:
		return localPrefix + l.Key
	default:
		return ""
	}
}

// Результат выдачи воспроизведения: либо внешний URL как есть,
// либо относительная подписанная ссылка на наш stream-эндпоинт.
type PlaybackDescriptor struct {
	URL      string
	External bool
}
