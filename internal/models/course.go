package models

import (
	"time"

	"gorm.io/gorm"
)

// Course represents a course offered on the platform
type Course struct {
	ID           string         `json:"id" gorm:"primaryKey"`
	Title        string         `json:"title" gorm:"not null"`
	Description  string         `json:"description"`
	InstructorID string         `json:"instructorId" gorm:"column:instructor_id;index"`
	Lessons      []Lesson       `json:"lessons,omitempty" gorm:"foreignKey:CourseID"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name for Course Model
func (Course) TableName() string {
	return "courses"
}

func (c *Course) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}

// Lesson is one ordered unit of a course
type Lesson struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	CourseID  string    `json:"courseId" gorm:"column:course_id;index;not null"`
	Title     string    `json:"title" gorm:"not null"`
	Content   string    `json:"content"`
	Position  int       `json:"position" gorm:"default:0"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Lesson Model
func (Lesson) TableName() string {
	return "lessons"
}

func (l *Lesson) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = NewID()
	}
	return nil
}
