package tui

import (
	"fmt"
	"strings"

	"familytree/internal/domain"
	"familytree/internal/tree"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Margin(0, 1)

	fatherCardStyle = cardStyle.BorderForeground(lipgloss.Color("12"))
	motherCardStyle = cardStyle.BorderForeground(lipgloss.Color("13"))

	roleStyle  = lipgloss.NewStyle().Faint(true)
	badgeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(1, 2)
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Family tree — " + m.layout.FamilyName))
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(dimStyle.Render("\n  Loading family tree...\n"))
	case m.errMsg != "":
		b.WriteString(errStyle.Render(m.errMsg + "\n\nPress enter to go back to the default family."))
		b.WriteString("\n")
	case m.showList:
		b.WriteString(m.renderList())
	default:
		b.WriteString(m.renderTree())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(" 1-9 open linked family · b back · r refresh · l families · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderList() string {
	var b strings.Builder
	b.WriteString("\n")
	for i, f := range m.families {
		b.WriteString(fmt.Sprintf("  [%d] %s\n", i+1, f.Name))
	}
	if len(m.families) == 0 {
		b.WriteString(dimStyle.Render("  No families.\n"))
	}
	return b.String()
}

func (m Model) renderTree() string {
	if m.layout.Empty {
		return dimStyle.Render("\n  No data available for this family.\n")
	}

	var b strings.Builder
	clickable := 0

	if len(m.layout.Grandparents) > 0 {
		b.WriteString(renderRow(m.layout.Grandparents, &clickable))
		b.WriteString("\n")
	}
	if len(m.layout.Parents) > 0 {
		b.WriteString(renderRow(m.layout.Parents, &clickable))
		b.WriteString("\n")
	}
	if len(m.layout.Children) > 0 {
		b.WriteString(renderRow(m.layout.Children, &clickable))
		b.WriteString("\n")
	}
	return b.String()
}

func renderRow(cards []tree.Card, clickable *int) string {
	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		rendered = append(rendered, renderCard(c, clickable))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func renderCard(c tree.Card, clickable *int) string {
	var lines []string
	lines = append(lines, roleStyle.Render(c.RoleLabel))
	lines = append(lines, genderIcon(c.Gender)+" "+c.Name)
	if c.BirthDate != nil {
		lines = append(lines, dimStyle.Render(c.BirthDate.Format("2006-01-02")))
	} else {
		lines = append(lines, dimStyle.Render("date unknown"))
	}

	if c.Clickable() {
		*clickable++
		arrow := "↓ has " + string(c.Badge)
		if c.Badge == tree.BadgeOriginFamily {
			arrow = "↑ has " + string(c.Badge)
		}
		lines = append(lines, badgeStyle.Render(fmt.Sprintf("[%d] %s", *clickable, arrow)))
	}

	if len(c.Grandchildren) > 0 {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("%d grandchild(ren):", len(c.Grandchildren))))
		for _, gc := range c.Grandchildren {
			lines = append(lines, dimStyle.Render("  "+genderIcon(gc.Gender)+" "+gc.Name))
		}
	}

	style := fatherCardStyle
	if c.Gender == domain.GenderFemale {
		style = motherCardStyle
	}
	return style.Render(strings.Join(lines, "\n"))
}

func genderIcon(g domain.Gender) string {
	if g == domain.GenderFemale {
		return "♀"
	}
	return "♂"
}
