package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"edu-dashboard-api/internal/apiclient"
	"edu-dashboard-api/internal/dashboard"
	"edu-dashboard-api/internal/models"
	"edu-dashboard-api/internal/query"
	"edu-dashboard-api/internal/repository"
)

// Widgets are the terminal dashboard's widgets, fetched over the REST API
// and polled every refresh (zero disables polling).
func Widgets(api *apiclient.Client, refresh time.Duration) []dashboard.Widget {
	poll := []query.Option{query.WithRefetchInterval(refresh)}
	return []dashboard.Widget{
		{
			Name: "courses", Key: "courses?page=1", Entities: []string{"course"}, Options: poll,
			Fetch: func(ctx context.Context) (any, error) { return api.Courses(ctx) },
		},
		{
			Name: "quizzes", Key: "quizzes", Entities: []string{"quiz"}, Options: poll,
			Fetch: func(ctx context.Context) (any, error) { return api.Quizzes(ctx) },
		},
		{
			Name: "threads", Key: "forum/threads?page=1", Entities: []string{"thread"}, Options: poll,
			Fetch: func(ctx context.Context) (any, error) { return api.Threads(ctx) },
		},
		{
			Name: "summary", Key: "analytics/summary", Options: poll,
			Entities: []string{"course", "lesson", "quiz", "attempt", "thread"},
			Fetch:    func(ctx context.Context) (any, error) { return api.Summary(ctx) },
		},
	}
}

// describe renders widget data on one line.
func describe(data any) string {
	switch d := data.(type) {
	case nil:
		return ""
	case []models.Course:
		return titles(len(d), "course", func(i int) string { return d[i].Title })
	case []models.Quiz:
		return titles(len(d), "quiz", func(i int) string { return d[i].Title })
	case []models.ForumThread:
		return titles(len(d), "thread", func(i int) string { return d[i].Title })
	case repository.Summary:
		return fmt.Sprintf("%d users, %d courses, %d attempts, avg %.1f%%",
			d.Users, d.Courses, d.Attempts, d.AverageScore)
	default:
		return fmt.Sprintf("%v", d)
	}
}

func titles(n int, noun string, title func(int) string) string {
	if n != 1 {
		noun += "s"
		if strings.HasSuffix(noun, "zs") {
			noun = strings.TrimSuffix(noun, "s") + "zes"
		}
	}
	shown := make([]string, 0, 3)
	for i := 0; i < n && i < 3; i++ {
		shown = append(shown, title(i))
	}
	out := fmt.Sprintf("%d %s", n, noun)
	if len(shown) > 0 {
		out += ": " + strings.Join(shown, ", ")
		if n > len(shown) {
			out += ", ..."
		}
	}
	return out
}
