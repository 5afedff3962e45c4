package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/EgorLis/media-gate/internal/domain"
)

// ---- Пользователи ----

func (r *PGRepo) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	q := r.qb().Select("id", "email", "pass_hash", "role", "created_at").
		From(fmt.Sprintf("%s.users", r.schema)).
		Where(sq.Eq{"email": email})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UserByEmail", sqlStr, args)

	return r.scanUser(ctx, sqlStr, args)
}

func (r *PGRepo) UserByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	q := r.qb().Select("id", "email", "pass_hash", "role", "created_at").
		From(fmt.Sprintf("%s.users", r.schema)).
		Where(sq.Eq{"id": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UserByID", sqlStr, args)

	return r.scanUser(ctx, sqlStr, args)
}

func (r *PGRepo) scanUser(ctx context.Context, sqlStr string, args []any) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)

	var (
		u       domain.User
		rawRole string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PassHash, &rawRole, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		r.logger.Printf("scanUser error after %s: %v", time.Since(start), err)
		return domain.User{}, err
	}

	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return domain.User{}, fmt.Errorf("user %s: %w", u.ID, err)
	}
	u.Role = role
	return u, nil
}

// ---- Уроки ----

// LessonByID тянет урок вместе с инструктором курса одним запросом.
// Локатор видео парсится здесь, на границе данных — дальше по коду
// строковые префиксы никто не разбирает.
func (r *PGRepo) LessonByID(ctx context.Context, id domain.LessonID) (domain.Lesson, error) {
	q := r.qb().Select("l.id", "l.course_id", "c.instructor_id", "l.title", "COALESCE(l.video_url, '')").
		From(fmt.Sprintf("%s.lessons l", r.schema)).
		Join(fmt.Sprintf("%s.courses c ON c.id = l.course_id", r.schema)).
		Where(sq.Eq{"l.id": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("LessonByID", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)

	var (
		l   domain.Lesson
		raw string
	)
	if err := row.Scan(&l.ID, &l.CourseID, &l.InstructorID, &l.Title, &raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lesson{}, domain.ErrNotFound
		}
		r.logger.Printf("LessonByID scan error after %s: %v", time.Since(start), err)
		return domain.Lesson{}, err
	}

	loc, err := domain.ParseLocator(raw)
	if err != nil {
		return domain.Lesson{}, fmt.Errorf("lesson %s: %w", l.ID, err)
	}
	l.Video = loc
	return l, nil
}

func (r *PGRepo) SetLessonVideo(ctx context.Context, id domain.LessonID, loc domain.VideoLocator) error {
	q := r.qb().Update(fmt.Sprintf("%s.lessons", r.schema)).
		Set("video_url", loc.Raw()).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("SetLessonVideo", sqlStr, args)

	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ---- Записи на курсы ----

func (r *PGRepo) IsEnrolled(ctx context.Context, studentID domain.UserID, courseID domain.CourseID) (bool, error) {
	q := r.qb().Select("1").
		From(fmt.Sprintf("%s.enrollments", r.schema)).
		Where(sq.Eq{"student_id": studentID, "course_id": courseID}).
		Limit(1)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("IsEnrolled", sqlStr, args)

	var one int
	err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
