// Package repository holds the queries shared by the REST handlers and the
// dashboard widgets.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"edu-dashboard-api/internal/models"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidScore = errors.New("score out of range")
)

// Page selects a slice of a listing ordered by creation time.
type Page struct {
	Page  int
	Limit int
	Asc   bool
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Normalize clamps the page into the accepted range.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	order := "created_at desc"
	if p.Asc {
		order = "created_at asc"
	}
	return q.Order(order).Limit(p.Limit).Offset((p.Page - 1) * p.Limit)
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

// ListCourses returns one page of courses and the total count.
func ListCourses(ctx context.Context, db *gorm.DB, p Page) ([]models.Course, int64, error) {
	p = p.Normalize()
	base := db.WithContext(ctx).Model(&models.Course{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	var courses []models.Course
	if err := p.apply(base.Session(&gorm.Session{})).Find(&courses).Error; err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}
	return courses, total, nil
}

// GetCourse loads a course with its lessons in position order.
func GetCourse(ctx context.Context, db *gorm.DB, id string) (models.Course, error) {
	var c models.Course
	err := db.WithContext(ctx).
		Preload("Lessons", func(tx *gorm.DB) *gorm.DB { return tx.Order("position asc, created_at asc") }).
		First(&c, "id = ?", id).Error
	if err != nil {
		return models.Course{}, notFound(err, "course "+id)
	}
	return c, nil
}

func CreateCourse(ctx context.Context, db *gorm.DB, c *models.Course) error {
	c.Title = strings.TrimSpace(c.Title)
	return db.WithContext(ctx).Create(c).Error
}

func courseExists(ctx context.Context, db *gorm.DB, id string) error {
	var n int64
	if err := db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("course %s: %w", id, ErrNotFound)
	}
	return nil
}

func ListLessons(ctx context.Context, db *gorm.DB, courseID string) ([]models.Lesson, error) {
	if err := courseExists(ctx, db, courseID); err != nil {
		return nil, err
	}
	var lessons []models.Lesson
	err := db.WithContext(ctx).Where("course_id = ?", courseID).Order("position asc, created_at asc").Find(&lessons).Error
	return lessons, err
}

// CreateLesson appends a lesson. A zero Position places it after the
// course's current last lesson.
func CreateLesson(ctx context.Context, db *gorm.DB, l *models.Lesson) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := courseExists(ctx, tx, l.CourseID); err != nil {
			return err
		}
		if l.Position == 0 {
			var last int
			if err := tx.Model(&models.Lesson{}).Where("course_id = ?", l.CourseID).
				Select("COALESCE(MAX(position), 0)").Scan(&last).Error; err != nil {
				return err
			}
			l.Position = last + 1
		}
		return tx.Create(l).Error
	})
}

// ListQuizzes returns every quiz, or only courseID's when it is set.
func ListQuizzes(ctx context.Context, db *gorm.DB, courseID string) ([]models.Quiz, error) {
	q := db.WithContext(ctx).Order("created_at desc")
	if courseID != "" {
		q = q.Where("course_id = ?", courseID)
	}
	var quizzes []models.Quiz
	err := q.Find(&quizzes).Error
	return quizzes, err
}

func CreateQuiz(ctx context.Context, db *gorm.DB, q *models.Quiz) error {
	if err := courseExists(ctx, db, q.CourseID); err != nil {
		return err
	}
	if q.MaxScore <= 0 {
		q.MaxScore = 100
	}
	return db.WithContext(ctx).Create(q).Error
}

// RecordAttempt stores a score after checking it against the quiz maximum.
func RecordAttempt(ctx context.Context, db *gorm.DB, a *models.QuizAttempt) error {
	var quiz models.Quiz
	if err := db.WithContext(ctx).First(&quiz, "id = ?", a.QuizID).Error; err != nil {
		return notFound(err, "quiz "+a.QuizID)
	}
	if a.Score < 0 || a.Score > quiz.MaxScore {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidScore, a.Score, quiz.MaxScore)
	}
	return db.WithContext(ctx).Create(a).Error
}

// ListAttempts returns userID's attempts, newest first.
func ListAttempts(ctx context.Context, db *gorm.DB, userID string, limit int) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at desc").Limit(Page{Limit: limit}.Normalize().Limit).
		Find(&attempts).Error
	return attempts, err
}

// ListThreads returns the most recent threads, optionally only those of a
// course.
func ListThreads(ctx context.Context, db *gorm.DB, courseID string, p Page) ([]models.ForumThread, error) {
	q := db.WithContext(ctx).Model(&models.ForumThread{})
	if courseID != "" {
		q = q.Where("course_id = ?", courseID)
	}
	var threads []models.ForumThread
	err := p.Normalize().apply(q).Find(&threads).Error
	return threads, err
}

func CreateThread(ctx context.Context, db *gorm.DB, t *models.ForumThread) error {
	if t.CourseID != "" {
		if err := courseExists(ctx, db, t.CourseID); err != nil {
			return err
		}
	}
	return db.WithContext(ctx).Create(t).Error
}
