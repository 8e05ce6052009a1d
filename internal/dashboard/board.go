package dashboard

import (
	"errors"
	"fmt"
	"time"

	"edu-dashboard-api/internal/query"
)

var ErrUnknownWidget = errors.New("unknown widget")

// View is the rendered state of one widget.
type View struct {
	Widget    string    `json:"widget"`
	Status    string    `json:"status"`
	Fetching  bool      `json:"fetching"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

func newView(name string, s query.State[any]) View {
	v := View{
		Widget:    name,
		Status:    s.Status.String(),
		Fetching:  s.IsFetching,
		UpdatedAt: s.UpdatedAt,
	}
	if s.HasData {
		v.Data = s.Data
	}
	if s.Err != nil {
		v.Error = s.Err.Error()
	}
	return v
}

// Board owns the queries of one window.
type Board struct {
	widgets []Widget
	queries map[string]*query.Query[any]
	cancels []func()
}

// NewBoard creates a query per widget and calls onChange with every state
// transition. Widgets are mounted only after their subscription exists so
// the first Loading transition is observed.
func NewBoard(c *query.Client, widgets []Widget, onChange func(View)) (*Board, error) {
	b := &Board{
		widgets: widgets,
		queries: make(map[string]*query.Query[any], len(widgets)),
	}
	for _, w := range widgets {
		if _, dup := b.queries[w.Name]; dup {
			b.Close()
			return nil, fmt.Errorf("duplicate widget %q", w.Name)
		}
		opts := append(append([]query.Option(nil), w.Options...), query.WithEnabled(false))
		q, err := query.Use(c, w.Key, w.Fetch, opts...)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("widget %s: %w", w.Name, err)
		}
		b.queries[w.Name] = q
		if onChange != nil {
			name := w.Name
			b.cancels = append(b.cancels, q.Subscribe(func(s query.State[any]) {
				onChange(newView(name, s))
			}))
		}
	}
	for _, w := range widgets {
		if !w.Disabled {
			b.queries[w.Name].SetEnabled(true)
		}
	}
	return b, nil
}

func (b *Board) query(name string) (*query.Query[any], error) {
	q, ok := b.queries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWidget, name)
	}
	return q, nil
}

// Views returns every widget's view in catalogue order.
func (b *Board) Views() []View {
	out := make([]View, 0, len(b.widgets))
	for _, w := range b.widgets {
		out = append(out, newView(w.Name, b.queries[w.Name].State()))
	}
	return out
}

func (b *Board) View(name string) (View, error) {
	q, err := b.query(name)
	if err != nil {
		return View{}, err
	}
	return newView(name, q.State()), nil
}

// Refetch refetches one widget, or all of them when name is empty.
func (b *Board) Refetch(name string) error {
	if name == "" {
		var errs []error
		for _, w := range b.widgets {
			errs = append(errs, b.queries[w.Name].Refetch())
		}
		return errors.Join(errs...)
	}
	q, err := b.query(name)
	if err != nil {
		return err
	}
	return q.Refetch()
}

func (b *Board) SetEnabled(name string, enabled bool) error {
	q, err := b.query(name)
	if err != nil {
		return err
	}
	q.SetEnabled(enabled)
	return nil
}

func (b *Board) Reset(name string) error {
	q, err := b.query(name)
	if err != nil {
		return err
	}
	q.Reset()
	return nil
}

// Invalidate refetches every widget watching entity and returns their names.
func (b *Board) Invalidate(entity string) []string {
	var names []string
	for _, w := range b.widgets {
		if !w.Watches(entity) {
			continue
		}
		if b.queries[w.Name].Refetch() == nil {
			names = append(names, w.Name)
		}
	}
	return names
}

// Close unmounts every widget.
func (b *Board) Close() {
	for _, cancel := range b.cancels {
		cancel()
	}
	for _, q := range b.queries {
		q.Close()
	}
}
