package playback

import (
	"context"
	"errors"
	"io"
	"log"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/EgorLis/media-gate/internal/domain"
	"github.com/EgorLis/media-gate/internal/media/signing"
)

type fakeLessons struct {
	lessons map[domain.LessonID]domain.Lesson
	calls   int
}

func (f *fakeLessons) LessonByID(_ context.Context, id domain.LessonID) (domain.Lesson, error) {
	f.calls++
	l, ok := f.lessons[id]
	if !ok {
		return domain.Lesson{}, domain.ErrNotFound
	}
	return l, nil
}

func (f *fakeLessons) SetLessonVideo(_ context.Context, id domain.LessonID, loc domain.VideoLocator) error {
	l := f.lessons[id]
	l.Video = loc
	f.lessons[id] = l
	return nil
}

type fakeEnrollments struct{ enrolled map[string]bool }

func (f *fakeEnrollments) IsEnrolled(_ context.Context, sid domain.UserID, cid domain.CourseID) (bool, error) {
	return f.enrolled[sid.String()+":"+cid.String()], nil
}

type fakeCache struct{ m map[string][]byte }

func newFakeCache() *fakeCache { return &fakeCache{m: map[string][]byte{}} }

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

func testIssuer(lessons *fakeLessons, enr *fakeEnrollments) (*Issuer, *signing.Signer, time.Time) {
	signer := signing.New("issuer-test-secret")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	iss := New(log.New(io.Discard, "", 0), lessons, enr, newFakeCache(), signer, 600)
	iss.now = func() time.Time { return now }
	return iss, signer, now
}

func TestIssueLocal(t *testing.T) {
	lessonID := uuid.New()
	courseID := uuid.New()
	instructorID := uuid.New()
	studentID := uuid.New()

	lessons := &fakeLessons{lessons: map[domain.LessonID]domain.Lesson{
		lessonID: {
			ID: lessonID, CourseID: courseID, InstructorID: instructorID,
			Video: domain.VideoLocator{Kind: domain.LocatorLocal, Key: "lessons/" + lessonID.String() + "/f.mp4"},
		},
	}}
	enr := &fakeEnrollments{enrolled: map[string]bool{studentID.String() + ":" + courseID.String(): true}}
	iss, signer, now := testIssuer(lessons, enr)

	d, err := iss.Issue(context.Background(), lessonID, domain.User{ID: studentID, Role: domain.RoleStudent})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if d.External {
		t.Fatal("local lesson marked external")
	}

	u, err := url.Parse(d.URL)
	if err != nil {
		t.Fatalf("parse url %q: %v", d.URL, err)
	}
	if u.Path != "/media/lessons/"+lessonID.String()+"/stream" {
		t.Fatalf("path = %q", u.Path)
	}
	q := u.Query()
	exp, err := strconv.ParseInt(q.Get("exp"), 10, 64)
	if err != nil || exp != now.Unix()+600 {
		t.Fatalf("exp = %q, want %d", q.Get("exp"), now.Unix()+600)
	}
	key := q.Get("key")
	if !strings.HasPrefix(key, "lessons/") {
		t.Fatalf("key = %q", key)
	}
	// подпись проверяется по восстановленному пейлоаду
	if !signer.Verify(signing.Payload(lessonID, exp, key), q.Get("sig")) {
		t.Fatal("issued signature does not verify")
	}
}

func TestIssueExternalPassthrough(t *testing.T) {
	lessonID := uuid.New()
	lessons := &fakeLessons{lessons: map[domain.LessonID]domain.Lesson{
		lessonID: {ID: lessonID, Video: domain.VideoLocator{Kind: domain.LocatorExternal, URL: "https://cdn.example.com/v.mp4"}},
	}}
	iss, _, _ := testIssuer(lessons, &fakeEnrollments{})

	d, err := iss.Issue(context.Background(), lessonID, domain.User{ID: uuid.New(), Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !d.External || d.URL != "https://cdn.example.com/v.mp4" {
		t.Fatalf("descriptor = %+v", d)
	}
}

func TestIssueErrors(t *testing.T) {
	lessonID := uuid.New()
	courseID := uuid.New()
	lessons := &fakeLessons{lessons: map[domain.LessonID]domain.Lesson{
		lessonID: {ID: lessonID, CourseID: courseID, InstructorID: uuid.New()},
	}}
	iss, _, _ := testIssuer(lessons, &fakeEnrollments{enrolled: map[string]bool{}})

	// урок не найден
	if _, err := iss.Issue(context.Background(), uuid.New(), domain.User{Role: domain.RoleAdmin}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing lesson: %v", err)
	}

	// не записанный студент — отказ политики
	if _, err := iss.Issue(context.Background(), lessonID, domain.User{ID: uuid.New(), Role: domain.RoleStudent}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("unenrolled student: %v", err)
	}

	// урок без видео — ошибка параметров (доступ у админа есть)
	if _, err := iss.Issue(context.Background(), lessonID, domain.User{Role: domain.RoleAdmin}); !errors.Is(err, domain.ErrBadParams) {
		t.Fatalf("no video: %v", err)
	}
}

func TestIssueUsesLessonCache(t *testing.T) {
	lessonID := uuid.New()
	lessons := &fakeLessons{lessons: map[domain.LessonID]domain.Lesson{
		lessonID: {ID: lessonID, Video: domain.VideoLocator{Kind: domain.LocatorLocal, Key: "lessons/x/f.mp4"}},
	}}
	iss, _, _ := testIssuer(lessons, &fakeEnrollments{})

	admin := domain.User{ID: uuid.New(), Role: domain.RoleAdmin}
	for i := 0; i < 3; i++ {
		if _, err := iss.Issue(context.Background(), lessonID, admin); err != nil {
			t.Fatalf("Issue #%d: %v", i, err)
		}
	}
	if lessons.calls != 1 {
		t.Fatalf("repo calls = %d, want 1 (rest from cache)", lessons.calls)
	}

	// после инвалидации идём в репозиторий снова
	iss.InvalidateLesson(context.Background(), lessonID)
	if _, err := iss.Issue(context.Background(), lessonID, admin); err != nil {
		t.Fatalf("Issue after invalidate: %v", err)
	}
	if lessons.calls != 2 {
		t.Fatalf("repo calls = %d, want 2", lessons.calls)
	}
}
