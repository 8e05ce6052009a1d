package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"edu-dashboard-api/internal/models"
	"edu-dashboard-api/internal/testutil"
)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	return db
}

func seedCourse(t *testing.T, db *gorm.DB, title string) models.Course {
	t.Helper()
	c := models.Course{Title: title, InstructorID: "u-1"}
	require.NoError(t, CreateCourse(context.Background(), db, &c))
	return c
}

func TestListCourses_Paginates(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	for _, title := range []string{"A", "B", "C"} {
		seedCourse(t, db, title)
	}

	page, total, err := ListCourses(ctx, db, Page{Page: 1, Limit: 2, Asc: true})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, page, 2)
	require.Equal(t, "A", page[0].Title)

	page, _, err = ListCourses(ctx, db, Page{Page: 2, Limit: 2, Asc: true})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "C", page[0].Title)
}

func TestPage_Normalize(t *testing.T) {
	p := Page{Page: -3, Limit: 1000}.Normalize()
	require.Equal(t, 1, p.Page)
	require.Equal(t, MaxLimit, p.Limit)
	require.Equal(t, DefaultLimit, Page{}.Normalize().Limit)
}

func TestCreateLesson_AppendsPosition(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	c := seedCourse(t, db, "Go")

	first := models.Lesson{CourseID: c.ID, Title: "Intro"}
	second := models.Lesson{CourseID: c.ID, Title: "Types"}
	require.NoError(t, CreateLesson(ctx, db, &first))
	require.NoError(t, CreateLesson(ctx, db, &second))
	require.Equal(t, 1, first.Position)
	require.Equal(t, 2, second.Position)

	got, err := GetCourse(ctx, db, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Lessons, 2)
	require.Equal(t, "Intro", got.Lessons[0].Title)
}

func TestCreateLesson_UnknownCourse(t *testing.T) {
	db := newDB(t)
	err := CreateLesson(context.Background(), db, &models.Lesson{CourseID: "nope", Title: "x"})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = ListLessons(context.Background(), db, "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetCourse_NotFound(t *testing.T) {
	_, err := GetCourse(context.Background(), newDB(t), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRecordAttempt_ChecksScore(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	c := seedCourse(t, db, "Go")
	quiz := models.Quiz{CourseID: c.ID, Title: "Basics", MaxScore: 10}
	require.NoError(t, CreateQuiz(ctx, db, &quiz))

	require.ErrorIs(t, RecordAttempt(ctx, db, &models.QuizAttempt{QuizID: quiz.ID, UserID: "u", Score: 11}), ErrInvalidScore)
	require.ErrorIs(t, RecordAttempt(ctx, db, &models.QuizAttempt{QuizID: "nope", UserID: "u", Score: 1}), ErrNotFound)
	require.NoError(t, RecordAttempt(ctx, db, &models.QuizAttempt{QuizID: quiz.ID, UserID: "u", Score: 8}))

	attempts, err := ListAttempts(ctx, db, "u", 5)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
}

func TestListQuizzes_FiltersByCourse(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	a, b := seedCourse(t, db, "A"), seedCourse(t, db, "B")
	require.NoError(t, CreateQuiz(ctx, db, &models.Quiz{CourseID: a.ID, Title: "qa"}))
	require.NoError(t, CreateQuiz(ctx, db, &models.Quiz{CourseID: b.ID, Title: "qb"}))

	all, err := ListQuizzes(ctx, db, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	onlyA, err := ListQuizzes(ctx, db, a.ID)
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	require.Equal(t, 100, onlyA[0].MaxScore)
}

func TestThreads(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	c := seedCourse(t, db, "Go")
	require.NoError(t, CreateThread(ctx, db, &models.ForumThread{AuthorID: "u", Title: "general"}))
	require.NoError(t, CreateThread(ctx, db, &models.ForumThread{AuthorID: "u", CourseID: c.ID, Title: "course"}))
	require.ErrorIs(t, CreateThread(ctx, db, &models.ForumThread{AuthorID: "u", CourseID: "nope", Title: "x"}), ErrNotFound)

	all, err := ListThreads(ctx, db, "", Page{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	scoped, err := ListThreads(ctx, db, c.ID, Page{})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
}

func TestSummarize(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	c := seedCourse(t, db, "Go")
	quiz := models.Quiz{CourseID: c.ID, Title: "q", MaxScore: 10}
	require.NoError(t, CreateQuiz(ctx, db, &quiz))
	require.NoError(t, RecordAttempt(ctx, db, &models.QuizAttempt{QuizID: quiz.ID, UserID: "u", Score: 5}))
	require.NoError(t, RecordAttempt(ctx, db, &models.QuizAttempt{QuizID: quiz.ID, UserID: "u", Score: 10}))

	s, err := Summarize(ctx, db)
	require.NoError(t, err)
	require.EqualValues(t, 1, s.Courses)
	require.EqualValues(t, 1, s.Quizzes)
	require.EqualValues(t, 2, s.Attempts)
	require.InDelta(t, 75.0, s.AverageScore, 0.001)
}
