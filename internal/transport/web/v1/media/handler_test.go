package media

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/EgorLis/media-gate/internal/domain"
	"github.com/EgorLis/media-gate/internal/media/playback"
	"github.com/EgorLis/media-gate/internal/media/signing"
	"github.com/EgorLis/media-gate/internal/media/storage"
)

// ---- фейки каталога ----

type fakeLessons struct {
	lessons map[domain.LessonID]domain.Lesson
}

func (f *fakeLessons) LessonByID(_ context.Context, id domain.LessonID) (domain.Lesson, error) {
	l, ok := f.lessons[id]
	if !ok {
		return domain.Lesson{}, domain.ErrNotFound
	}
	return l, nil
}

func (f *fakeLessons) SetLessonVideo(_ context.Context, id domain.LessonID, loc domain.VideoLocator) error {
	l, ok := f.lessons[id]
	if !ok {
		return domain.ErrNotFound
	}
	l.Video = loc
	f.lessons[id] = l
	return nil
}

type fakeEnrollments struct{ enrolled map[string]bool }

func (f *fakeEnrollments) IsEnrolled(_ context.Context, sid domain.UserID, cid domain.CourseID) (bool, error) {
	return f.enrolled[sid.String()+":"+cid.String()], nil
}

type fakeCache struct{ m map[string][]byte }

func (c *fakeCache) Get(_ context.Context, k string) ([]byte, error) { return c.m[k], nil }
func (c *fakeCache) Set(_ context.Context, k string, v []byte, _ int) error {
	c.m[k] = v
	return nil
}
func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.m, k)
	}
	return nil
}
func (c *fakeCache) SetNX(_ context.Context, k string, v []byte, _ int) (bool, error) {
	if _, ok := c.m[k]; ok {
		return false, nil
	}
	c.m[k] = v
	return true, nil
}
func (c *fakeCache) Exists(_ context.Context, k string) (bool, error) { _, ok := c.m[k]; return ok, nil }
func (c *fakeCache) Ping(context.Context) error                      { return nil }
func (c *fakeCache) Close()                                          {}

// ---- сборка тестового окружения ----

type env struct {
	handler *Handler
	store   *storage.Local
	lessons *fakeLessons
	enr     *fakeEnrollments
	signer  *signing.Signer
	now     time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()

	discard := log.New(io.Discard, "", 0)
	store, err := storage.New(t.TempDir(), discard)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}

	lessons := &fakeLessons{lessons: map[domain.LessonID]domain.Lesson{}}
	enr := &fakeEnrollments{enrolled: map[string]bool{}}
	signer := signing.New("handler-test-secret")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	issuer := playback.New(discard, lessons, enr, &fakeCache{m: map[string][]byte{}}, signer, 600)

	h := &Handler{
		Log:     discard,
		Lessons: lessons,
		Issuer:  issuer,
		Signer:  signer,
		Store:   store,
		Now:     func() time.Time { return now },
	}
	return &env{handler: h, store: store, lessons: lessons, enr: enr, signer: signer, now: now}
}

func (e *env) addLocalLesson(t *testing.T, instructorID domain.UserID, video []byte) (domain.LessonID, domain.CourseID, string) {
	t.Helper()
	lessonID, courseID := uuid.New(), uuid.New()

	key, _, err := e.store.Save(context.Background(), lessonID, bytes.NewReader(video), "video/mp4", "lecture.mp4")
	if err != nil {
		t.Fatalf("store.Save: %v", err)
	}
	e.lessons.lessons[lessonID] = domain.Lesson{
		ID: lessonID, CourseID: courseID, InstructorID: instructorID,
		Video: domain.VideoLocator{Kind: domain.LocatorLocal, Key: key},
	}
	return lessonID, courseID, key
}

func (e *env) streamRequest(lessonID domain.LessonID, exp int64, sig, key, rangeHdr string) *httptest.ResponseRecorder {
	q := url.Values{}
	q.Set("exp", strconv.FormatInt(exp, 10))
	q.Set("sig", sig)
	q.Set("key", key)
	r := httptest.NewRequest(http.MethodGet, "/media/lessons/"+lessonID.String()+"/stream?"+q.Encode(), nil)
	r.SetPathValue("lessonID", lessonID.String())
	if rangeHdr != "" {
		r.Header.Set("Range", rangeHdr)
	}
	w := httptest.NewRecorder()
	e.handler.Stream(w, r)
	return w
}

// ---- stream ----

func TestStreamEndToEnd(t *testing.T) {
	e := newEnv(t)
	instructorID := uuid.New()
	studentID := uuid.New()
	video := bytes.Repeat([]byte("v"), 2<<20) // 2 MiB
	lessonID, courseID, _ := e.addLocalLesson(t, instructorID, video)
	e.enr.enrolled[studentID.String()+":"+courseID.String()] = true

	// студент получает ссылку на воспроизведение
	r := httptest.NewRequest(http.MethodGet, "/media/lessons/"+lessonID.String()+"/playback", nil)
	r.SetPathValue("lessonID", lessonID.String())
	r = r.WithContext(domain.WithUser(r.Context(), domain.User{ID: studentID, Role: domain.RoleStudent}))
	w := httptest.NewRecorder()
	before := time.Now().Unix()
	e.handler.Playback(w, r)
	after := time.Now().Unix()

	if w.Code != http.StatusOK {
		t.Fatalf("playback status = %d, body = %s", w.Code, w.Body)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("playback body: %v", err)
	}

	u, err := url.Parse(resp["url"])
	if err != nil {
		t.Fatalf("parse stream url: %v", err)
	}
	q := u.Query()
	exp, _ := strconv.ParseInt(q.Get("exp"), 10, 64)
	if exp < before+600 || exp > after+600 {
		t.Fatalf("exp = %d, want issue time + 600", exp)
	}
	sig, key := q.Get("sig"), q.Get("key")

	// по ссылке отдаётся не больше 1 МиБ
	sw := e.streamRequest(lessonID, exp, sig, key, "")
	if sw.Code != http.StatusOK {
		t.Fatalf("stream status = %d", sw.Code)
	}
	if int64(sw.Body.Len()) != storage.WindowSize {
		t.Fatalf("stream body = %d bytes, want %d", sw.Body.Len(), storage.WindowSize)
	}
	if got := sw.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control = %q", got)
	}
	if got := sw.Header().Get("Accept-Ranges"); got != "bytes" {
		t.Fatalf("Accept-Ranges = %q", got)
	}
	if got := sw.Header().Get("Content-Type"); got != "video/mp4" {
		t.Fatalf("Content-Type = %q", got)
	}

	// exp, сдвинутый назад — 403
	if w := e.streamRequest(lessonID, exp-601, sig, key, ""); w.Code != http.StatusForbidden {
		t.Fatalf("mutated exp: status = %d", w.Code)
	}

	// один перевёрнутый символ подписи — 403
	flipped := []byte(sig)
	if flipped[0] == 'a' {
		flipped[0] = 'b'
	} else {
		flipped[0] = 'a'
	}
	if w := e.streamRequest(lessonID, exp, string(flipped), key, ""); w.Code != http.StatusForbidden {
		t.Fatalf("mutated sig: status = %d", w.Code)
	}
}

func TestStreamRange(t *testing.T) {
	e := newEnv(t)
	video := make([]byte, 10<<20) // 10 MiB
	lessonID, _, key := e.addLocalLesson(t, uuid.New(), video)

	exp := e.now.Unix() + 600
	sig := e.signer.Sign(signing.Payload(lessonID, exp, key))

	w := e.streamRequest(lessonID, exp, sig, key, "bytes=0-")
	if w.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", w.Code)
	}
	if cr := w.Header().Get("Content-Range"); cr != "bytes 0-1048575/10485760" {
		t.Fatalf("Content-Range = %q", cr)
	}
	if int64(w.Body.Len()) != storage.WindowSize {
		t.Fatalf("body = %d bytes", w.Body.Len())
	}

	// конец за EOF усекается до последнего байта
	w = e.streamRequest(lessonID, exp, sig, key, "bytes=9999999-10485760")
	if w.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", w.Code)
	}
	wantEnd := int64(10<<20) - 1
	wantCR := "bytes 9999999-" + strconv.FormatInt(wantEnd, 10) + "/10485760"
	if cr := w.Header().Get("Content-Range"); cr != wantCR {
		t.Fatalf("Content-Range = %q, want %q", cr, wantCR)
	}
}

func TestStreamExpiry(t *testing.T) {
	e := newEnv(t)
	lessonID, _, key := e.addLocalLesson(t, uuid.New(), []byte("vvvv"))

	// подпись корректная, но exp уже в прошлом относительно часов хендлера
	for _, exp := range []int64{e.now.Unix(), e.now.Unix() - 1} {
		sig := e.signer.Sign(signing.Payload(lessonID, exp, key))
		if w := e.streamRequest(lessonID, exp, sig, key, ""); w.Code != http.StatusForbidden {
			t.Fatalf("exp=%d: status = %d, want 403", exp, w.Code)
		}
	}

	// exp строго в будущем — пропускаем
	exp := e.now.Unix() + 1
	sig := e.signer.Sign(signing.Payload(lessonID, exp, key))
	if w := e.streamRequest(lessonID, exp, sig, key, ""); w.Code != http.StatusOK {
		t.Fatalf("future exp: status = %d, want 200", w.Code)
	}
}

func TestStreamTokenScopedToLesson(t *testing.T) {
	e := newEnv(t)
	lessonA, _, keyA := e.addLocalLesson(t, uuid.New(), []byte("aaaa"))
	lessonB, _, _ := e.addLocalLesson(t, uuid.New(), []byte("bbbb"))

	exp := e.now.Unix() + 600
	sigA := e.signer.Sign(signing.Payload(lessonA, exp, keyA))

	// токен урока A не подходит для урока B: пейлоад другой
	if w := e.streamRequest(lessonB, exp, sigA, keyA, ""); w.Code != http.StatusForbidden {
		t.Fatalf("cross-lesson token: status = %d", w.Code)
	}
}

func TestStreamMissingFile(t *testing.T) {
	e := newEnv(t)
	lessonID := uuid.New()
	key := "lessons/" + lessonID.String() + "/gone.mp4"
	exp := e.now.Unix() + 600
	sig := e.signer.Sign(signing.Payload(lessonID, exp, key))

	if w := e.streamRequest(lessonID, exp, sig, key, ""); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestStreamBadParams(t *testing.T) {
	e := newEnv(t)
	lessonID := uuid.New()

	r := httptest.NewRequest(http.MethodGet, "/media/lessons/"+lessonID.String()+"/stream?exp=abc&sig=x&key=y", nil)
	r.SetPathValue("lessonID", lessonID.String())
	w := httptest.NewRecorder()
	e.handler.Stream(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad exp: status = %d", w.Code)
	}
}

// ---- playback ----

func TestPlaybackUnauthenticated(t *testing.T) {
	e := newEnv(t)
	lessonID, _, _ := e.addLocalLesson(t, uuid.New(), []byte("vvvv"))

	r := httptest.NewRequest(http.MethodGet, "/media/lessons/"+lessonID.String()+"/playback", nil)
	r.SetPathValue("lessonID", lessonID.String())
	w := httptest.NewRecorder()
	e.handler.Playback(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestPlaybackDeniedWithReason(t *testing.T) {
	e := newEnv(t)
	lessonID, _, _ := e.addLocalLesson(t, uuid.New(), []byte("vvvv"))

	r := httptest.NewRequest(http.MethodGet, "/media/lessons/"+lessonID.String()+"/playback", nil)
	r.SetPathValue("lessonID", lessonID.String())
	r = r.WithContext(domain.WithUser(r.Context(), domain.User{ID: uuid.New(), Role: domain.RoleStudent}))
	w := httptest.NewRecorder()
	e.handler.Playback(w, r)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if !strings.Contains(w.Body.String(), "enrolled") {
		t.Fatalf("body = %s, want enrollment reason", w.Body)
	}
}

func TestPlaybackExternal(t *testing.T) {
	e := newEnv(t)
	lessonID := uuid.New()
	e.lessons.lessons[lessonID] = domain.Lesson{
		ID: lessonID, CourseID: uuid.New(), InstructorID: uuid.New(),
		Video: domain.VideoLocator{Kind: domain.LocatorExternal, URL: "https://cdn.example.com/v.mp4"},
	}

	r := httptest.NewRequest(http.MethodGet, "/media/lessons/"+lessonID.String()+"/playback", nil)
	r.SetPathValue("lessonID", lessonID.String())
	r = r.WithContext(domain.WithUser(r.Context(), domain.User{ID: uuid.New(), Role: domain.RoleAdmin}))
	w := httptest.NewRecorder()
	e.handler.Playback(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["url"] != "https://cdn.example.com/v.mp4" {
		t.Fatalf("url = %q", resp["url"])
	}
}

// ---- upload ----

func multipartVideo(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func (e *env) uploadRequest(t *testing.T, lessonID domain.LessonID, u domain.User, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/media/lessons/"+lessonID.String()+"/video", body)
	r.SetPathValue("lessonID", lessonID.String())
	r.Header.Set("Content-Type", contentType)
	r = r.WithContext(domain.WithUser(r.Context(), u))
	w := httptest.NewRecorder()
	e.handler.Upload(w, r)
	return w
}

func TestUploadByOwnerInstructor(t *testing.T) {
	e := newEnv(t)
	instructorID := uuid.New()
	lessonID, courseID := uuid.New(), uuid.New()
	e.lessons.lessons[lessonID] = domain.Lesson{ID: lessonID, CourseID: courseID, InstructorID: instructorID}

	body, ct := multipartVideo(t, "file", "intro lesson.mp4", "video/mp4", bytes.Repeat([]byte("x"), 1024))
	w := e.uploadRequest(t, lessonID, domain.User{ID: instructorID, Role: domain.RoleInstructor}, body, ct)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["lessonId"] != lessonID.String() {
		t.Fatalf("lessonId = %q", resp["lessonId"])
	}

	// урок указывает на сохранённый файл, имя санировано
	l := e.lessons.lessons[lessonID]
	if l.Video.Kind != domain.LocatorLocal {
		t.Fatalf("locator = %+v", l.Video)
	}
	if !strings.HasPrefix(l.Video.Key, "lessons/"+lessonID.String()+"/") || !strings.HasSuffix(l.Video.Key, "-intro_lesson.mp4") {
		t.Fatalf("key = %q", l.Video.Key)
	}
	if _, err := e.store.Resolve(l.Video.Key); err != nil {
		t.Fatalf("resolve stored key: %v", err)
	}
}

func TestUploadDenied(t *testing.T) {
	e := newEnv(t)
	ownerID := uuid.New()
	lessonID, courseID := uuid.New(), uuid.New()
	e.lessons.lessons[lessonID] = domain.Lesson{ID: lessonID, CourseID: courseID, InstructorID: ownerID}

	tests := []struct {
		name string
		user domain.User
	}{
		{name: "foreign instructor", user: domain.User{ID: uuid.New(), Role: domain.RoleInstructor}},
		{name: "student", user: domain.User{ID: uuid.New(), Role: domain.RoleStudent}},
		{name: "admin", user: domain.User{ID: uuid.New(), Role: domain.RoleAdmin}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body, ct := multipartVideo(t, "file", "v.mp4", "video/mp4", []byte("data"))
			if w := e.uploadRequest(t, lessonID, tc.user, body, ct); w.Code != http.StatusForbidden {
				t.Fatalf("status = %d, want 403", w.Code)
			}
		})
	}
}

func TestUploadRejectsNonVideo(t *testing.T) {
	e := newEnv(t)
	instructorID := uuid.New()
	lessonID := uuid.New()
	e.lessons.lessons[lessonID] = domain.Lesson{ID: lessonID, CourseID: uuid.New(), InstructorID: instructorID}

	body, ct := multipartVideo(t, "file", "doc.pdf", "application/pdf", []byte("%PDF"))
	if w := e.uploadRequest(t, lessonID, domain.User{ID: instructorID, Role: domain.RoleInstructor}, body, ct); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUploadMissingLesson(t *testing.T) {
	e := newEnv(t)
	body, ct := multipartVideo(t, "file", "v.mp4", "video/mp4", []byte("data"))
	u := domain.User{ID: uuid.New(), Role: domain.RoleInstructor}
	if w := e.uploadRequest(t, uuid.New(), u, body, ct); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestUploadMissingFile(t *testing.T) {
	e := newEnv(t)
	instructorID := uuid.New()
	lessonID := uuid.New()
	e.lessons.lessons[lessonID] = domain.Lesson{ID: lessonID, CourseID: uuid.New(), InstructorID: instructorID}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("other", "value")
	_ = mw.Close()

	if w := e.uploadRequest(t, lessonID, domain.User{ID: instructorID, Role: domain.RoleInstructor}, &buf, mw.FormDataContentType()); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
