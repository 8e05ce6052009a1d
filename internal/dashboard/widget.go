// Package dashboard mounts one query per widget and turns their state into
// views for a live window.
package dashboard

import (
	"context"
	"slices"
	"time"

	"gorm.io/gorm"

	"edu-dashboard-api/internal/query"
	"edu-dashboard-api/internal/repository"
)

// Widget binds a query key and fetcher to the entities whose changes make
// it outdated.
type Widget struct {
	Name     string
	Key      string
	Entities []string
	Fetch    query.Fetcher[any]
	Options  []query.Option
	// Disabled widgets are created unmounted until enabled by the window.
	Disabled bool
}

// Watches reports whether a change to entity affects the widget.
func (w Widget) Watches(entity string) bool {
	return slices.Contains(w.Entities, entity)
}

// Catalog returns the widgets a server-side window shows for userID. Keys
// of shared widgets are user independent so windows of different users
// share cache entries.
func Catalog(db *gorm.DB, userID string) []Widget {
	firstPage := repository.Page{Page: 1, Limit: 10}
	return []Widget{
		{
			Name:     "courses",
			Key:      "courses?page=1",
			Entities: []string{"course"},
			Fetch: func(ctx context.Context) (any, error) {
				courses, _, err := repository.ListCourses(ctx, db, firstPage)
				return courses, err
			},
		},
		{
			Name:     "quizzes",
			Key:      "quizzes",
			Entities: []string{"quiz"},
			Fetch: func(ctx context.Context) (any, error) {
				return repository.ListQuizzes(ctx, db, "")
			},
		},
		{
			Name:     "threads",
			Key:      "forum/threads?page=1",
			Entities: []string{"thread"},
			Fetch: func(ctx context.Context) (any, error) {
				return repository.ListThreads(ctx, db, "", firstPage)
			},
		},
		{
			Name:     "summary",
			Key:      "analytics/summary",
			Entities: []string{"course", "lesson", "quiz", "attempt", "thread"},
			Fetch: func(ctx context.Context) (any, error) {
				return repository.Summarize(ctx, db)
			},
			Options: []query.Option{query.WithStaleTime(10 * time.Second)},
		},
		{
			Name:     "my-attempts",
			Key:      "attempts/" + userID,
			Entities: []string{"attempt"},
			Fetch: func(ctx context.Context) (any, error) {
				return repository.ListAttempts(ctx, db, userID, 10)
			},
		},
	}
}
