package domain

import (
	"errors"
	"fmt"
)

// Бизнес-ошибки (маппятся на HTTP коды в transport/web/v1)
var (
	ErrBadParams        = errors.New("bad_params")         // 400
	ErrUnauth           = errors.New("unauthorized")       // 401
	ErrForbidden        = errors.New("forbidden")          // 403
	ErrNotFound         = errors.New("not_found")          // 404
	ErrMethodNotAllowed = errors.New("method_not_allowed") // 405
	ErrInvalidKey       = errors.New("invalid_key")        // плохой ключ хранилища (traversal и т.п.)
	ErrStorage          = errors.New("storage_error")      // 500, ошибка диска — не ретраим
	ErrUnexpected       = errors.New("unexpected")         // 500
)

// Forbiddenf — отказ политики доступа с коротким текстом для пользователя.
// Текст уходит наружу как есть, поэтому без внутренних деталей.
func Forbiddenf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// ForbiddenReason достаёт текст отказа (часть после "forbidden: ").
func ForbiddenReason(err error) string {
	if err == nil || !errors.Is(err, ErrForbidden) {
		return ""
	}
	msg := err.Error()
	if msg == ErrForbidden.Error() {
		return ""
	}
	const pref = "forbidden: "
	if len(msg) > len(pref) && msg[:len(pref)] == pref {
		return msg[len(pref):]
	}
	return msg
}
