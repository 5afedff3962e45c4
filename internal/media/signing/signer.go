package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/EgorLis/media-gate/internal/domain"
)

// Signer подписывает и проверяет HMAC-SHA256 подписи медиа-ссылок.
// Подпись — 64 символа hex в нижнем регистре.
type Signer struct {
	secret []byte
}

func New(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Payload — каноничная строка подписи: "{lessonId}:{exp}:{key}".
// key не содержит ':' (генерируется из uuid и санированного имени),
// так что разделитель однозначен.
func Payload(lessonID domain.LessonID, exp int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", lessonID, exp, key)
}

func (s *Signer) Sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify сравнивает подписи за константное время.
// Возвращает только bool — никаких деталей о месте расхождения.
func (s *Signer) Verify(payload, signatureHex string) bool {
	if signatureHex == "" {
		return false
	}
	expected := s.Sign(payload)
	return hmac.Equal([]byte(expected), []byte(signatureHex))
}
