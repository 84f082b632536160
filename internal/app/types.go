package app

import (
	"encoding/json"
	"time"
)

// Source is a registered repository the Jules service can act on.
type Source struct {
	Name        string      `json:"name"` // "sources/github/..."
	ID          string      `json:"id,omitempty"`
	DisplayName string      `json:"displayName,omitempty"`
	GitHubRepo  *GitHubRepo `json:"githubRepo,omitempty"`
}

type GitHubRepo struct {
	Owner         string  `json:"owner"`
	Repo          string  `json:"repo"`
	IsPrivate     bool    `json:"isPrivate,omitempty"`
	DefaultBranch *Branch `json:"defaultBranch,omitempty"`
}

type Branch struct {
	DisplayName string `json:"displayName"`
}

// Label returns the human-readable name for a source: "owner/repo" when the
// GitHub descriptor is present, otherwise the display name or resource name.
func (s *Source) Label() string {
	if s.GitHubRepo != nil && s.GitHubRepo.Owner != "" {
		return s.GitHubRepo.Owner + "/" + s.GitHubRepo.Repo
	}
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Name
}

// SessionState is the lifecycle state reported by the service.
type SessionState string

const (
	StateUnspecified          SessionState = "STATE_UNSPECIFIED"
	StateQueued               SessionState = "QUEUED"
	StatePlanning             SessionState = "PLANNING"
	StateAwaitingPlanApproval SessionState = "AWAITING_PLAN_APPROVAL"
	StateAwaitingUserFeedback SessionState = "AWAITING_USER_FEEDBACK"
	StateInProgress           SessionState = "IN_PROGRESS"
	StateActive               SessionState = "ACTIVE"
	StatePaused               SessionState = "PAUSED"
	StateCompleted            SessionState = "COMPLETED"
	StateFailed               SessionState = "FAILED"
)

// Terminal reports whether the session has finished and will not change again.
func (s SessionState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// LabelKey maps a state to its translation key.
func (s SessionState) LabelKey() string {
	switch s {
	case StateCompleted:
		return "stateCompleted"
	case StateFailed:
		return "stateFailed"
	case StateUnspecified, "":
		return "stateUnknown"
	default:
		return "stateActive"
	}
}

// Session is one unit of work the agent runs against a source.
type Session struct {
	Name        string          `json:"name"` // "sessions/..."
	Title       string          `json:"title,omitempty"`
	State       SessionState    `json:"state,omitempty"`
	CreateTime  time.Time       `json:"createTime"`
	UpdateTime  time.Time       `json:"updateTime"`
	Outputs     []SessionOutput `json:"outputs,omitempty"`
	SubmittedPR string          `json:"submittedPr,omitempty"`
}

type SessionOutput struct {
	PullRequest *PullRequest `json:"pullRequest,omitempty"`
}

type PullRequest struct {
	URL         string `json:"url,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// PullRequestURL returns the submitted PR link. The service sometimes reports
// it only inside outputs, so the first non-empty outputs[].pullRequest.url
// wins when the top-level field is unset.
func (s *Session) PullRequestURL() string {
	if s.SubmittedPR != "" {
		return s.SubmittedPR
	}
	for _, out := range s.Outputs {
		if out.PullRequest != nil && out.PullRequest.URL != "" {
			return out.PullRequest.URL
		}
	}
	return ""
}

type PlanStep struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	State       string `json:"state,omitempty"`
	Index       int    `json:"index,omitempty"`
}

// ActivityPayload is the one-of content of an activity. Exactly one concrete
// type is set per activity; the interface is sealed so a type switch over the
// variants is exhaustive.
type ActivityPayload interface {
	activityPayload()
}

type AgentMessage struct {
	Message string
}

type UserMessage struct {
	Message string
}

type ProgressUpdate struct {
	Title       string
	Description string
}

type PlanGenerated struct {
	PlanID string
	Steps  []PlanStep
}

type PlanApprovalRequested struct {
	PlanID string
}

type PlanApproved struct {
	PlanID string
}

type SessionCompleted struct{}

type SessionFailed struct {
	Reason string
}

func (AgentMessage) activityPayload()          {}
func (UserMessage) activityPayload()           {}
func (ProgressUpdate) activityPayload()        {}
func (PlanGenerated) activityPayload()         {}
func (PlanApprovalRequested) activityPayload() {}
func (PlanApproved) activityPayload()          {}
func (SessionCompleted) activityPayload()      {}
func (SessionFailed) activityPayload()         {}

// Activity is one event in a session's timeline.
type Activity struct {
	Name       string
	ID         string
	CreateTime time.Time
	Originator string // "agent" | "user"
	Title      string
	Payload    ActivityPayload
	Artifacts  []Artifact
}

// Artifact is a piece of data attached to an activity. At most one field is
// set per artifact on the wire.
type Artifact struct {
	BashOutput *BashOutput `json:"bashOutput,omitempty"`
	ChangeSet  *ChangeSet  `json:"changeSet,omitempty"`
	Media      *Media      `json:"media,omitempty"`
}

type BashOutput struct {
	Command  string `json:"command"`
	Output   string `json:"output,omitempty"`
	ExitCode *int   `json:"exitCode,omitempty"`
}

type ChangeSet struct {
	Source   string    `json:"source,omitempty"`
	GitPatch *GitPatch `json:"gitPatch,omitempty"`
}

type GitPatch struct {
	UnidiffPatch string `json:"unidiffPatch"`
	BaseCommitID string `json:"baseCommitId,omitempty"`
}

type Media struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

// activityWire mirrors the service's optional-field encoding of the one-of.
type activityWire struct {
	Name       string    `json:"name,omitempty"`
	ID         string    `json:"id,omitempty"`
	CreateTime time.Time `json:"createTime"`
	Originator string    `json:"originator,omitempty"`
	Title      string    `json:"title,omitempty"`

	AgentMessaged *struct {
		AgentMessage string `json:"agentMessage"`
	} `json:"agentMessaged,omitempty"`
	UserMessaged *struct {
		UserMessage string `json:"userMessage"`
	} `json:"userMessaged,omitempty"`
	ProgressUpdated *struct {
		Title       string `json:"title,omitempty"`
		Description string `json:"description,omitempty"`
	} `json:"progressUpdated,omitempty"`
	PlanGenerated *struct {
		Plan struct {
			ID    string     `json:"id"`
			Steps []PlanStep `json:"steps,omitempty"`
		} `json:"plan"`
	} `json:"planGenerated,omitempty"`
	PlanApprovalRequested *struct {
		PlanID string `json:"planId"`
	} `json:"planApprovalRequested,omitempty"`
	PlanApproved *struct {
		PlanID string `json:"planId,omitempty"`
	} `json:"planApproved,omitempty"`
	SessionCompleted *struct{} `json:"sessionCompleted,omitempty"`
	SessionFailed    *struct {
		Reason string `json:"reason,omitempty"`
	} `json:"sessionFailed,omitempty"`

	Artifacts []Artifact `json:"artifacts,omitempty"`
}

func (a *Activity) UnmarshalJSON(data []byte) error {
	var w activityWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	a.Name = w.Name
	a.ID = w.ID
	a.CreateTime = w.CreateTime
	a.Originator = w.Originator
	a.Title = w.Title
	a.Artifacts = w.Artifacts

	switch {
	case w.AgentMessaged != nil:
		a.Payload = AgentMessage{Message: w.AgentMessaged.AgentMessage}
	case w.UserMessaged != nil:
		a.Payload = UserMessage{Message: w.UserMessaged.UserMessage}
	case w.ProgressUpdated != nil:
		a.Payload = ProgressUpdate{Title: w.ProgressUpdated.Title, Description: w.ProgressUpdated.Description}
	case w.PlanGenerated != nil:
		a.Payload = PlanGenerated{PlanID: w.PlanGenerated.Plan.ID, Steps: w.PlanGenerated.Plan.Steps}
	case w.PlanApprovalRequested != nil:
		a.Payload = PlanApprovalRequested{PlanID: w.PlanApprovalRequested.PlanID}
	case w.PlanApproved != nil:
		a.Payload = PlanApproved{PlanID: w.PlanApproved.PlanID}
	case w.SessionCompleted != nil:
		a.Payload = SessionCompleted{}
	case w.SessionFailed != nil:
		a.Payload = SessionFailed{Reason: w.SessionFailed.Reason}
	default:
		a.Payload = nil
	}
	return nil
}

func (a Activity) MarshalJSON() ([]byte, error) {
	w := activityWire{
		Name:       a.Name,
		ID:         a.ID,
		CreateTime: a.CreateTime,
		Originator: a.Originator,
		Title:      a.Title,
		Artifacts:  a.Artifacts,
	}
	switch p := a.Payload.(type) {
	case AgentMessage:
		w.AgentMessaged = &struct {
			AgentMessage string `json:"agentMessage"`
		}{AgentMessage: p.Message}
	case UserMessage:
		w.UserMessaged = &struct {
			UserMessage string `json:"userMessage"`
		}{UserMessage: p.Message}
	case ProgressUpdate:
		w.ProgressUpdated = &struct {
			Title       string `json:"title,omitempty"`
			Description string `json:"description,omitempty"`
		}{Title: p.Title, Description: p.Description}
	case PlanGenerated:
		pg := &struct {
			Plan struct {
				ID    string     `json:"id"`
				Steps []PlanStep `json:"steps,omitempty"`
			} `json:"plan"`
		}{}
		pg.Plan.ID = p.PlanID
		pg.Plan.Steps = p.Steps
		w.PlanGenerated = pg
	case PlanApprovalRequested:
		w.PlanApprovalRequested = &struct {
			PlanID string `json:"planId"`
		}{PlanID: p.PlanID}
	case PlanApproved:
		w.PlanApproved = &struct {
			PlanID string `json:"planId,omitempty"`
		}{PlanID: p.PlanID}
	case SessionCompleted:
		w.SessionCompleted = &struct{}{}
	case SessionFailed:
		w.SessionFailed = &struct {
			Reason string `json:"reason,omitempty"`
		}{Reason: p.Reason}
	}
	return json.Marshal(w)
}

type listSourcesResponse struct {
	Sources       []Source `json:"sources"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}

type listSessionsResponse struct {
	Sessions      []Session `json:"sessions"`
	NextPageToken string    `json:"nextPageToken,omitempty"`
}

type listActivitiesResponse struct {
	Activities    []Activity `json:"activities"`
	NextPageToken string     `json:"nextPageToken,omitempty"`
}
