package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/EgorLis/media-gate/internal/domain"
)

// WindowSize — максимум байт на один ответ стрима.
// Сервис отдаёт видео окнами: клиент докачивает следующими Range-запросами.
const WindowSize int64 = 1 << 20 // 1 MiB

// Local — файловое хранилище видео под одним корнем.
// Запись идёт только через Save; после записи файлы не изменяются,
// поэтому конкурентные чтения не требуют блокировок.
type Local struct {
	root   string // абсолютный нормализованный корень
	logger *log.Logger
}

func New(dir string, logger *log.Logger) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage dir: %w", err)
	}
	root := filepath.Clean(abs)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	logger.Printf("storage root: %s", root)
	return &Local{root: root, logger: logger}, nil
}

func (s *Local) Ping(_ context.Context) error {
	_, err := os.Stat(s.root)
	return err
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeName отрезает директории и заменяет всё вне [A-Za-z0-9._-] на '_'.
func sanitizeName(name string) string {
	name = path.Base(filepath.ToSlash(name))
	name = unsafeChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		return "video"
	}
	return name
}

// Save сохраняет поток видео под lessons/<lessonID>/<uuid>-<имя>
// и возвращает относительный ключ (всегда с прямыми слэшами).
func (s *Local) Save(ctx context.Context, lessonID domain.LessonID, r io.Reader, contentType, originalName string) (string, int64, error) {
	if !strings.HasPrefix(strings.ToLower(contentType), "video/") {
		return "", 0, fmt.Errorf("%w: only video files are allowed", domain.ErrBadParams)
	}

	if originalName == "" {
		originalName = "video"
	}
	filename := uuid.NewString() + "-" + sanitizeName(originalName)

	lessonDir := filepath.Join(s.root, "lessons", lessonID.String())
	if err := os.MkdirAll(lessonDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("%w: create lesson dir: %v", domain.ErrStorage, err)
	}

	target := filepath.Clean(filepath.Join(lessonDir, filename))
	// Защита в глубину: имя мы сгенерировали сами, но путь всё равно проверяем
	if !s.inRoot(target) {
		return "", 0, fmt.Errorf("%w: invalid file path", domain.ErrBadParams)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", 0, fmt.Errorf("%w: create file: %v", domain.ErrStorage, err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(target)
		return "", 0, fmt.Errorf("%w: write file: %v", domain.ErrStorage, err)
	}
	if size == 0 {
		_ = os.Remove(target)
		return "", 0, fmt.Errorf("%w: video file is required", domain.ErrBadParams)
	}

	key := path.Join("lessons", lessonID.String(), filename)
	s.logger.Printf("saved %s (%d bytes)", key, size)
	return key, size, nil
}

// Resolve превращает ключ в абсолютный путь внутри корня.
// Сравниваем нормализованные пути, не сырые строки.
func (s *Local) Resolve(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: empty key", domain.ErrInvalidKey)
	}
	// filepath.Join молча "одомашнивает" абсолютные пути, поэтому отдельная проверка
	if path.IsAbs(key) || filepath.IsAbs(filepath.FromSlash(key)) {
		return "", fmt.Errorf("%w: absolute path", domain.ErrInvalidKey)
	}
	resolved := filepath.Clean(filepath.Join(s.root, filepath.FromSlash(key)))
	if !s.inRoot(resolved) {
		return "", fmt.Errorf("%w: path escapes storage root", domain.ErrInvalidKey)
	}
	return resolved, nil
}

func (s *Local) inRoot(p string) bool {
	return p != s.root && strings.HasPrefix(p, s.root+string(filepath.Separator))
}

// OpenRange открывает окно файла по ключу.
// rangeHeader — сырой заголовок Range ("bytes=A-B", может быть пустым).
// contentRange == "" означает обычный 200-ответ (окно с нулевого байта),
// иначе — 206 с указанным Content-Range. Окно никогда не больше WindowSize.
func (s *Local) OpenRange(key, rangeHeader string) (rc io.ReadCloser, contentLen int64, contentRange, contentType string, err error) {
	p, err := s.Resolve(key)
	if err != nil {
		return nil, 0, "", "", err
	}

	fi, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, "", "", domain.ErrNotFound
		}
		return nil, 0, "", "", fmt.Errorf("%w: stat: %v", domain.ErrStorage, err)
	}
	total := fi.Size()

	start, end, useRange := parseRange(rangeHeader, total)
	if useRange {
		// учитываем только первый диапазон и режем его до окна
		if n := end - start + 1; n > WindowSize {
			end = start + WindowSize - 1
		}
		contentLen = end - start + 1
		contentRange = fmt.Sprintf("bytes %d-%d/%d", start, end, total)
	} else {
		start = 0
		contentLen = min64(WindowSize, total)
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, 0, "", "", fmt.Errorf("%w: open: %v", domain.ErrStorage, err)
	}
	if start > 0 {
		if _, err := f.Seek(start, io.SeekStart); err != nil {
			_ = f.Close()
			return nil, 0, "", "", fmt.Errorf("%w: seek: %v", domain.ErrStorage, err)
		}
	}

	contentType = typeByExtension(filepath.Ext(p))

	return &window{r: io.LimitReader(f, contentLen), f: f}, contentLen, contentRange, contentType, nil
}

// Частые видео-расширения: встроенная таблица mime их не знает,
// а системная /etc/mime.types есть не везде.
var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
}

func typeByExtension(ext string) string {
	if ct, ok := videoTypes[strings.ToLower(ext)]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// window — ограниченное чтение поверх открытого файла.
type window struct {
	r io.Reader
	f *os.File
}

func (w *window) Read(p []byte) (int, error) { return w.r.Read(p) }
func (w *window) Close() error               { return w.f.Close() }

// parseRange разбирает первый диапазон заголовка Range.
// Невалидный или невыполнимый диапазон игнорируется (ok=false):
// запрос обслуживается как безусловный.
func parseRange(header string, total int64) (start, end int64, ok bool) {
	if !strings.HasPrefix(header, "bytes=") || total == 0 {
		return 0, 0, false
	}
	spec := strings.TrimPrefix(header, "bytes=")
	// только первый запрошенный диапазон
	if i := strings.IndexByte(spec, ','); i >= 0 {
		spec = spec[:i]
	}
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	switch {
	// bytes=A-B
	case parts[0] != "" && parts[1] != "":
		a, e1 := strconv.ParseInt(parts[0], 10, 64)
		b, e2 := strconv.ParseInt(parts[1], 10, 64)
		if e1 != nil || e2 != nil || a < 0 || b < a || a >= total {
			return 0, 0, false
		}
		// конец за EOF усекаем до последнего байта
		if b > total-1 {
			b = total - 1
		}
		return a, b, true

	// bytes=A- (от A до конца)
	case parts[0] != "" && parts[1] == "":
		a, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil || a < 0 || a >= total {
			return 0, 0, false
		}
		return a, total - 1, true

	// bytes=-N (последние N байт)
	case parts[0] == "" && parts[1] != "":
		n, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || n <= 0 {
			return 0, 0, false
		}
		if n > total {
			n = total
		}
		return total - n, total - 1, true
	}
	return 0, 0, false
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
