// Package courses provides the course catalog view for the TUI.
package courses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
)

// ErrNoCatalogService is returned when loading without a catalog service.
var ErrNoCatalogService = errors.New("catalog service not available")

// View lists indexed courses with the lesson outline of the selected one.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	catalog driving.CatalogService
	ctx     context.Context

	courses  []domain.CatalogEntry
	stats    domain.IndexStats
	selected int
	loading  bool

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new courses view.
func NewView(s *styles.Styles, km *keymap.KeyMap, catalog driving.CatalogService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:  s,
		keymap:  km,
		catalog: catalog,
		ctx:     context.Background(),
		width:   80,
		height:  24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts loading the catalog.
func (v *View) Init() tea.Cmd {
	return v.Load()
}

// Load fetches the catalog and index statistics in the background.
func (v *View) Load() tea.Cmd {
	v.loading = true
	catalog := v.catalog
	ctx := v.ctx
	return func() tea.Msg {
		if catalog == nil {
			return messages.CoursesLoaded{Err: ErrNoCatalogService}
		}
		courses, err := catalog.Catalog(ctx)
		if err != nil {
			return messages.CoursesLoaded{Err: err}
		}
		stats, err := catalog.Stats(ctx)
		return messages.CoursesLoaded{Courses: courses, Stats: stats, Err: err}
	}
}

// Update handles messages for the courses view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.CoursesLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.courses = msg.Courses
			v.stats = msg.Stats
			if v.selected >= len(v.courses) {
				v.selected = 0
			}
		}

	case tea.KeyMsg:
		switch {
		case msg.Type == tea.KeyEsc:
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case keymap.Matches(msg.String(), v.keymap.Up):
			if v.selected > 0 {
				v.selected--
			}
		case keymap.Matches(msg.String(), v.keymap.Down):
			if v.selected < len(v.courses)-1 {
				v.selected++
			}
		case msg.String() == "r":
			return v, v.Load()
		}
	}
	return v, nil
}

// View renders the courses view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("Courses"), ""}

	switch {
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	case v.loading:
		sections = append(sections, v.styles.Muted.Render("Loading..."))
	case len(v.courses) == 0:
		sections = append(sections, v.styles.Muted.Render("No courses indexed. Run 'coursemate ingest <path>' to add some."))
	default:
		sections = append(sections,
			v.styles.Subtitle.Render(fmt.Sprintf("%d courses, %d chunks", v.stats.Courses, v.stats.Chunks)),
			"",
			v.renderList(),
			"",
			v.renderDetail(),
		)
	}

	sections = append(sections, "", v.styles.Help.Render("↑/↓: navigate • r: reload • esc: back"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderList() string {
	lines := make([]string, 0, len(v.courses))
	for i, c := range v.courses {
		line := fmt.Sprintf("%s (%d lessons)", c.Title, c.LessonCount)
		if i == v.selected {
			lines = append(lines, v.styles.Selected.Render("> "+line))
		} else {
			lines = append(lines, v.styles.Normal.Render("  "+line))
		}
	}
	return strings.Join(lines, "\n")
}

func (v *View) renderDetail() string {
	c := v.SelectedCourse()
	if c == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render(c.Title))
	if c.Instructor != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render("Instructor: " + c.Instructor))
	}
	if c.Link != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(c.Link))
	}
	for _, l := range c.Lessons {
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf("  %d. %s", l.Number, l.Title)))
	}
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Courses returns the loaded catalog.
func (v *View) Courses() []domain.CatalogEntry {
	return v.courses
}

// Stats returns the loaded index statistics.
func (v *View) Stats() domain.IndexStats {
	return v.stats
}

// Selected returns the index of the selected course.
func (v *View) Selected() int {
	return v.selected
}

// SelectedCourse returns the selected course, or nil when none are loaded.
func (v *View) SelectedCourse() *domain.CatalogEntry {
	if v.selected < 0 || v.selected >= len(v.courses) {
		return nil
	}
	return &v.courses[v.selected]
}

// Err returns the last load error, if any.
func (v *View) Err() error {
	return v.err
}
