package tui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor  = lipgloss.Color("63")
	errorColor   = lipgloss.Color("203")
	successColor = lipgloss.Color("42")

	titleStyle = lipgloss.NewStyle().Bold(true)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(accentColor).
			Padding(0, 2)
	inactiveTabStyle = lipgloss.NewStyle().
				Faint(true).
				Padding(0, 2)

	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(accentColor).
			Padding(0, 1)
)

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

func errorText(text string) string {
	return lipgloss.NewStyle().Foreground(errorColor).Bold(true).Render(text)
}

func successText(text string) string {
	return lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(text)
}

func panel(content string, width int) string {
	style := lipgloss.NewStyle().
		Padding(1, 3).
		Border(lipgloss.NormalBorder()).
		BorderForeground(accentColor)
	if width > 56 {
		style = style.Width(min(width-8, 84))
	}
	return style.Render(content)
}

// errorBlock replaces a list whose fetch failed.
func errorBlock(message string, width int) string {
	style := lipgloss.NewStyle().
		Padding(0, 2).
		Border(lipgloss.NormalBorder()).
		BorderForeground(errorColor)
	if width > 56 {
		style = style.Width(min(width-8, 84))
	}
	return style.Render(errorText(message) + "\n" + hint("ctrl+r to retry"))
}

func tabsView(names []string, active int) string {
	rendered := make([]string, len(names))
	for i, name := range names {
		if i == active {
			rendered[i] = activeTabStyle.Render(name)
		} else {
			rendered[i] = inactiveTabStyle.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
