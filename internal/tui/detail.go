package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jules-cli/internal/app"
)

func (m Model) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.timeline, cmd = m.timeline.Update(msg)
		return m, cmd
	}

	if m.replying {
		switch keyMsg.String() {
		case "esc":
			m.replying = false
			m.reply.Blur()
			return m, nil
		case "enter":
			text := strings.TrimSpace(m.reply.Value())
			if text == "" {
				return m, nil
			}
			return m, m.sendMessageCmd(m.current.Name, text)
		}
		var cmd tea.Cmd
		m.reply, cmd = m.reply.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case "ctrl+c", "q", "esc":
		m.state = stateList
		m.current = nil
		m.activities = nil
		m.pending = ""
		return m, m.fetchSessionsCmd(true)
	case "r":
		return m, m.fetchActivitiesCmd(m.current.Name, false)
	case "a":
		if m.pending != "" {
			return m, m.approvePlanCmd(m.current.Name)
		}
		return m, nil
	case "i":
		m.replying = true
		m.reply.Focus()
		return m, nil
	case "e":
		return m, m.exportCmd()
	case "x":
		m.client.ClearError()
		return m, nil
	}

	var cmd tea.Cmd
	m.timeline, cmd = m.timeline.Update(msg)
	return m, cmd
}

func (m Model) viewDetail() string {
	if m.current == nil {
		return ""
	}

	title := m.current.Title
	if title == "" {
		title = m.current.Name
	}
	head := detailHeadStyle.Render(title) + "  " +
		dimStyle.Render(m.tr(m.current.State.LabelKey()))
	if pr := m.current.PullRequestURL(); pr != "" {
		head += "\n" + labelStyle.Render("PR  ") + pr
	}

	var body string
	switch {
	case m.client.IsLoading() && len(m.activities) == 0:
		body = dimStyle.Render(m.tr("loading"))
	case len(m.activities) == 0:
		body = dimStyle.Render(m.tr("noActivities"))
	default:
		body = m.timeline.View()
	}

	var footer string
	switch {
	case m.replying:
		footer = m.reply.View() + "\n" + helpStyle.Render("enter: send · esc: cancel")
	case m.pending != "":
		footer = warnStyle.Render("Plan awaiting approval") + "\n" +
			helpStyle.Render("a: approve · i: reply · e: export · r: refresh · esc: back")
	default:
		footer = helpStyle.Render("i: reply · e: export · r: refresh · esc: back")
	}
	if m.notice != "" {
		footer = m.notice + "\n" + footer
	}

	return lipgloss.JoinVertical(lipgloss.Left, head, "", body, "", footer)
}

func (m Model) renderTimeline() string {
	var b strings.Builder
	for _, act := range m.activities {
		m.writeActivity(&b, act)
	}
	return b.String()
}

func (m Model) writeActivity(b *strings.Builder, act app.Activity) {
	stamp := dimStyle.Render(act.CreateTime.Local().Format("15:04"))

	switch p := act.Payload.(type) {
	case app.UserMessage:
		b.WriteString(okStyle.Render("You ") + stamp + "\n" + p.Message + "\n\n")
	case app.AgentMessage:
		b.WriteString(titleStyle.UnsetMarginLeft().Render("Jules ") + stamp + "\n" + p.Message + "\n\n")
	case app.ProgressUpdate:
		line := "· " + p.Title
		if p.Description != "" {
			line += "\n  " + dimStyle.Render(p.Description)
		}
		b.WriteString(line + "\n\n")
	case app.PlanGenerated:
		b.WriteString(warnStyle.Render(m.tr("planSummary")) + " " + stamp + "\n")
		for i, step := range p.Steps {
			fmt.Fprintf(b, "%2d. %s\n", i+1, step.Title)
		}
		b.WriteString("\n")
	case app.PlanApprovalRequested:
		b.WriteString(warnStyle.Render("Plan approval requested") + " " + stamp + "\n\n")
	case app.PlanApproved:
		b.WriteString(okStyle.Render("Plan approved") + " " + stamp + "\n\n")
	case app.SessionCompleted:
		b.WriteString(okStyle.Render("Session completed") + " " + stamp + "\n\n")
	case app.SessionFailed:
		line := errStyle.Render("Session failed") + " " + stamp
		if p.Reason != "" {
			line += "\n" + p.Reason
		}
		b.WriteString(line + "\n\n")
	}

	for _, art := range act.Artifacts {
		switch {
		case art.BashOutput != nil:
			b.WriteString(dimStyle.Render("$ "+art.BashOutput.Command) + "\n")
			if art.BashOutput.Output != "" {
				b.WriteString(strings.TrimRight(art.BashOutput.Output, "\n") + "\n")
			}
			b.WriteString("\n")
		case art.ChangeSet != nil && art.ChangeSet.GitPatch != nil:
			b.WriteString(renderDiff(art.ChangeSet.GitPatch.UnidiffPatch) + "\n")
		}
	}
}

func renderDiff(patch string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(patch, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			b.WriteString(okStyle.Render(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(errStyle.Render(line))
		case strings.HasPrefix(line, "@@"):
			b.WriteString(warnStyle.Render(line))
		default:
			b.WriteString(dimStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
