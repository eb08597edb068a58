package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/pscheid92/tasklists/internal/domain"
)

const (
	dateLayout   = "2006-01-02"
	shortIDChars = 8
)

var (
	colorPrimary   = lipgloss.Color("#7aa2f7")
	colorSecondary = lipgloss.Color("#bb9af7")
	colorSuccess   = lipgloss.Color("#9ece6a")
	colorMuted     = lipgloss.Color("#565f89")
)

type styles struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	tag     lipgloss.Style
	done    lipgloss.Style
	success lipgloss.Style
}

// newStyles binds the palette to w so colors are dropped when w is not a
// terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Foreground(colorPrimary).Bold(true),
		muted:   r.NewStyle().Foreground(colorMuted),
		tag:     r.NewStyle().Foreground(colorSecondary),
		done:    r.NewStyle().Foreground(colorMuted).Strikethrough(true),
		success: r.NewStyle().Foreground(colorSuccess),
	}
}

func shortID(id uuid.UUID) string {
	return id.String()[:shortIDChars]
}

// renderLists writes each list with its position, slug and visible tasks.
func renderLists(w io.Writer, lists []domain.List, now time.Time) {
	st := newStyles(w)
	if len(lists) == 0 {
		fmt.Fprintln(w, st.muted.Render("No lists yet. Create one with `todo lists add <name>`."))
		return
	}

	for i, l := range lists {
		header := fmt.Sprintf("%d. %s %s", i+1, st.title.Render(l.Name), st.muted.Render("("+l.Slug+")"))
		fmt.Fprintln(w, header)
		if l.Description != "" {
			fmt.Fprintln(w, "   "+st.muted.Render(l.Description))
		}
		for _, t := range l.Tasks {
			if t.Visible(now) {
				fmt.Fprintln(w, "   "+renderTask(st, t))
			}
		}
	}
}

// renderTasks writes visible tasks grouped under their list, in list order.
func renderTasks(w io.Writer, lists []domain.List, tasks []domain.Task, now time.Time) {
	st := newStyles(w)

	byList := make(map[uuid.UUID][]domain.Task)
	for _, t := range tasks {
		if t.Visible(now) {
			byList[t.ListID] = append(byList[t.ListID], t)
		}
	}

	printed := false
	for _, l := range lists {
		group := byList[l.ID]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintln(w, st.title.Render(l.Name))
		for _, t := range group {
			fmt.Fprintln(w, "  "+renderTask(st, t))
		}
		printed = true
	}
	if !printed {
		fmt.Fprintln(w, st.muted.Render("No tasks."))
	}
}

// renderTask formats one task line. Completed tasks are struck through.
func renderTask(st styles, t domain.Task) string {
	box, name := "[ ]", t.Name
	if t.Completed {
		box, name = "[x]", st.done.Render(t.Name)
	}

	parts := []string{box, st.muted.Render(shortID(t.ID)), name, st.muted.Render(t.Date.Format(dateLayout))}
	for _, tag := range t.Tags {
		parts = append(parts, st.tag.Render("#"+tag))
	}
	return strings.Join(parts, " ")
}
