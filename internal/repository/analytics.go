package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"edu-dashboard-api/internal/models"
)

// Summary is the platform-wide analytics snapshot.
type Summary struct {
	Users        int64   `json:"users"`
	Courses      int64   `json:"courses"`
	Lessons      int64   `json:"lessons"`
	Quizzes      int64   `json:"quizzes"`
	Attempts     int64   `json:"attempts"`
	Threads      int64   `json:"threads"`
	AverageScore float64 `json:"averageScore"`
}

// Summarize counts every table and averages attempt scores as a percentage
// of each quiz's maximum.
func Summarize(ctx context.Context, db *gorm.DB) (Summary, error) {
	db = db.WithContext(ctx)
	var s Summary
	counts := []struct {
		model any
		dst   *int64
	}{
		{&models.User{}, &s.Users},
		{&models.Course{}, &s.Courses},
		{&models.Lesson{}, &s.Lessons},
		{&models.Quiz{}, &s.Quizzes},
		{&models.QuizAttempt{}, &s.Attempts},
		{&models.ForumThread{}, &s.Threads},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dst).Error; err != nil {
			return Summary{}, fmt.Errorf("summarize: %w", err)
		}
	}

	if s.Attempts > 0 {
		err := db.Model(&models.QuizAttempt{}).
			Select("COALESCE(AVG(quiz_attempts.score * 100.0 / quizzes.max_score), 0)").
			Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id").
			Scan(&s.AverageScore).Error
		if err != nil {
			return Summary{}, fmt.Errorf("average score: %w", err)
		}
	}
	return s, nil
}
