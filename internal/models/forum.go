package models

import (
	"time"

	"gorm.io/gorm"
)

// ForumThread is a discussion opened by a user, optionally scoped to a course
type ForumThread struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	CourseID  string    `json:"courseId,omitempty" gorm:"column:course_id;index"`
	AuthorID  string    `json:"authorId" gorm:"column:author_id;index;not null"`
	Title     string    `json:"title" gorm:"not null"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for ForumThread Model
func (ForumThread) TableName() string {
	return "forum_threads"
}

func (t *ForumThread) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = NewID()
	}
	return nil
}

// All lists every model the schema migrates.
func All() []any {
	return []any{&User{}, &Course{}, &Lesson{}, &Quiz{}, &QuizAttempt{}, &ForumThread{}}
}
