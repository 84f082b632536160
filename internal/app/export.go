package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const exportSchemaVersion = 1

// ExportFormat selects the serialization of SaveExport.
type ExportFormat string

const (
	ExportMarkdown ExportFormat = "md"
	ExportJSON     ExportFormat = "json"
)

// RenderMarkdown produces a human-readable transcript of a session: a header
// with the session metadata followed by one section per activity, artifacts
// rendered as fenced code blocks.
func RenderMarkdown(sess Session, activities []Activity) string {
	var b strings.Builder

	title := sess.Title
	if title == "" {
		title = path.Base(sess.Name)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- Session: `%s`\n", sess.Name)
	fmt.Fprintf(&b, "- State: %s\n", sess.State)
	fmt.Fprintf(&b, "- Created: %s\n", sess.CreateTime.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Updated: %s\n", sess.UpdateTime.Format(time.RFC3339))
	if pr := sess.PullRequestURL(); pr != "" {
		fmt.Fprintf(&b, "- Pull Request: %s\n", pr)
	}
	b.WriteString("\n---\n\n")

	if len(activities) == 0 {
		b.WriteString("_No activities._\n")
		return b.String()
	}

	for _, act := range activities {
		writeActivityMarkdown(&b, act)
	}
	return b.String()
}

func writeActivityMarkdown(b *strings.Builder, act Activity) {
	stamp := act.CreateTime.Format("2006-01-02 15:04")

	switch p := act.Payload.(type) {
	case AgentMessage:
		fmt.Fprintf(b, "## Jules (%s)\n\n%s\n\n", stamp, p.Message)
	case UserMessage:
		fmt.Fprintf(b, "## You (%s)\n\n%s\n\n", stamp, p.Message)
	case ProgressUpdate:
		fmt.Fprintf(b, "## Progress (%s)\n\n**%s**\n", stamp, p.Title)
		if p.Description != "" {
			fmt.Fprintf(b, "\n%s\n", p.Description)
		}
		b.WriteString("\n")
	case PlanGenerated:
		fmt.Fprintf(b, "## Plan (%s)\n\n", stamp)
		for i, step := range p.Steps {
			fmt.Fprintf(b, "%d. %s\n", i+1, step.Title)
			if step.Description != "" {
				fmt.Fprintf(b, "   %s\n", step.Description)
			}
		}
		b.WriteString("\n")
	case PlanApprovalRequested:
		fmt.Fprintf(b, "## Plan approval requested (%s)\n\n", stamp)
	case PlanApproved:
		fmt.Fprintf(b, "## Plan approved (%s)\n\n", stamp)
	case SessionCompleted:
		fmt.Fprintf(b, "## Session completed (%s)\n\n", stamp)
	case SessionFailed:
		fmt.Fprintf(b, "## Session failed (%s)\n\n", stamp)
		if p.Reason != "" {
			fmt.Fprintf(b, "%s\n\n", p.Reason)
		}
	default:
		if act.Title != "" {
			fmt.Fprintf(b, "## %s (%s)\n\n", act.Title, stamp)
		}
	}

	for _, art := range act.Artifacts {
		switch {
		case art.BashOutput != nil:
			fmt.Fprintf(b, "```console\n$ %s\n", art.BashOutput.Command)
			if art.BashOutput.Output != "" {
				b.WriteString(art.BashOutput.Output)
				if !strings.HasSuffix(art.BashOutput.Output, "\n") {
					b.WriteString("\n")
				}
			}
			if art.BashOutput.ExitCode != nil && *art.BashOutput.ExitCode != 0 {
				fmt.Fprintf(b, "(exit %d)\n", *art.BashOutput.ExitCode)
			}
			b.WriteString("```\n\n")
		case art.ChangeSet != nil && art.ChangeSet.GitPatch != nil:
			fmt.Fprintf(b, "```diff\n%s\n```\n\n", strings.TrimRight(art.ChangeSet.GitPatch.UnidiffPatch, "\n"))
		case art.Media != nil:
			fmt.Fprintf(b, "_Attachment: %s (%d bytes base64)_\n\n", art.Media.MimeType, len(art.Media.Data))
		}
	}
}

type exportEnvelope struct {
	Version    int        `json:"version"`
	ExportedAt time.Time  `json:"exportedAt"`
	Session    Session    `json:"session"`
	Activities []Activity `json:"activities"`
}

// RenderJSON produces a machine-readable export of the session and timeline.
func RenderJSON(sess Session, activities []Activity) ([]byte, error) {
	env := exportEnvelope{
		Version:    exportSchemaVersion,
		ExportedAt: time.Now().UTC(),
		Session:    sess,
		Activities: activities,
	}
	return json.MarshalIndent(env, "", "  ")
}

// SaveExport writes the rendered session to dir and returns the file path.
// The name embeds the session's short ID and a timestamp so repeated exports
// never collide.
func SaveExport(dir string, sess Session, activities []Activity, format ExportFormat) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	var data []byte
	switch format {
	case ExportJSON:
		out, err := RenderJSON(sess, activities)
		if err != nil {
			return "", err
		}
		data = out
	case ExportMarkdown, "":
		format = ExportMarkdown
		data = []byte(RenderMarkdown(sess, activities))
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}

	name := fmt.Sprintf("session-%s-%d.%s", path.Base(sess.Name), time.Now().Unix(), format)
	dst := filepath.Join(dir, name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", err
	}
	return dst, nil
}
