package models

import (
	"time"

	"gorm.io/gorm"
)

// Quiz is an assessment attached to a course
type Quiz struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	CourseID  string    `json:"courseId" gorm:"column:course_id;index;not null"`
	Title     string    `json:"title" gorm:"not null"`
	MaxScore  int       `json:"maxScore" gorm:"column:max_score;default:100"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Quiz Model
func (Quiz) TableName() string {
	return "quizzes"
}

func (q *Quiz) BeforeCreate(*gorm.DB) error {
	if q.ID == "" {
		q.ID = NewID()
	}
	return nil
}

// QuizAttempt records one user's score on a quiz
type QuizAttempt struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	QuizID    string    `json:"quizId" gorm:"column:quiz_id;index;not null"`
	UserID    string    `json:"userId" gorm:"column:user_id;index;not null"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for QuizAttempt Model
func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

func (a *QuizAttempt) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = NewID()
	}
	return nil
}
