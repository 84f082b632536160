package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"jules-cli/internal/app"
)

// createForm is the new-task modal: pick a source, write the prompt, optionally
// require plan approval.
type createForm struct {
	tr app.Translator

	sources []app.Source
	cursor  int

	prompt      textinput.Model
	approval    bool
	focusPrompt bool
	inputErr    string
}

func newCreateForm(tr app.Translator) createForm {
	prompt := textinput.New()
	prompt.Placeholder = tr("promptLabel")
	prompt.CharLimit = 2000
	prompt.Width = 56
	return createForm{tr: tr, prompt: prompt}
}

func (f *createForm) reset() {
	f.cursor = 0
	f.approval = false
	f.focusPrompt = false
	f.inputErr = ""
	f.prompt.Reset()
	f.prompt.Blur()
}

func (f *createForm) setSources(sources []app.Source) {
	f.sources = sources
	if f.cursor >= len(sources) {
		f.cursor = 0
	}
}

func (f *createForm) selected() *app.Source {
	if f.cursor < 0 || f.cursor >= len(f.sources) {
		return nil
	}
	return &f.sources[f.cursor]
}

func (m Model) updateCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.create.focusPrompt {
		switch keyMsg.String() {
		case "esc":
			m.create.focusPrompt = false
			m.create.prompt.Blur()
			return m, nil
		case "enter":
			return m.submitCreate()
		}
		var cmd tea.Cmd
		m.create.prompt, cmd = m.create.prompt.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case "esc", "q":
		m.state = stateList
		return m, nil
	case "up", "k":
		if m.create.cursor > 0 {
			m.create.cursor--
		}
		return m, nil
	case "down", "j":
		if m.create.cursor < len(m.create.sources)-1 {
			m.create.cursor++
		}
		// Nearing the bottom pulls the next page of sources.
		if m.create.cursor == len(m.create.sources)-1 && m.client.HasMoreSources() {
			return m, m.fetchMoreSourcesCmd()
		}
		return m, nil
	case "p":
		m.create.approval = !m.create.approval
		return m, nil
	case "i", "tab":
		m.create.focusPrompt = true
		m.create.prompt.Focus()
		return m, textinput.Blink
	case "enter":
		return m.submitCreate()
	}
	return m, nil
}

func (m Model) submitCreate() (tea.Model, tea.Cmd) {
	src := m.create.selected()
	prompt := strings.TrimSpace(m.create.prompt.Value())
	if src == nil || prompt == "" {
		m.create.inputErr = m.tr("inputError")
		return m, nil
	}
	m.create.inputErr = ""

	opts := app.CreateSessionOptions{
		Source:              src.Name,
		Prompt:              prompt,
		RequirePlanApproval: m.create.approval,
	}
	if src.GitHubRepo != nil && src.GitHubRepo.DefaultBranch != nil {
		opts.StartingBranch = src.GitHubRepo.DefaultBranch.DisplayName
	}
	return m, m.createSessionCmd(opts)
}

func (f createForm) view() string {
	var b strings.Builder
	b.WriteString(detailHeadStyle.Render(f.tr("newTask")) + "\n\n")

	b.WriteString(labelStyle.Render(f.tr("selectRepo")) + "\n")
	switch {
	case len(f.sources) == 0:
		b.WriteString(dimStyle.Render(f.tr("noSourcesFound")) + "\n")
	default:
		// Window of five around the cursor so long source lists stay usable.
		start := f.cursor - 2
		if start < 0 {
			start = 0
		}
		end := start + 5
		if end > len(f.sources) {
			end = len(f.sources)
		}
		for i := start; i < end; i++ {
			line := "  " + f.sources[i].Label()
			if i == f.cursor {
				line = okStyle.Render("> " + f.sources[i].Label())
			}
			b.WriteString(line + "\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render(f.tr("promptLabel")) + "\n")
	b.WriteString(f.prompt.View() + "\n\n")

	check := "[ ]"
	if f.approval {
		check = "[x]"
	}
	b.WriteString(check + " Require plan approval (p)\n")

	if f.inputErr != "" {
		b.WriteString("\n" + errStyle.Render(f.inputErr) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("enter: "+f.tr("startSession")+" · i: edit prompt · esc: cancel"))
	return b.String()
}
