package app

import (
	"encoding/json"
	"testing"
)

func TestActivityUnmarshalVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ActivityPayload
	}{
		{
			"agent message",
			`{"id":"1","createTime":"2026-08-01T12:00:00Z","agentMessaged":{"agentMessage":"hello"}}`,
			AgentMessage{Message: "hello"},
		},
		{
			"user message",
			`{"id":"2","createTime":"2026-08-01T12:00:01Z","userMessaged":{"userMessage":"hi"}}`,
			UserMessage{Message: "hi"},
		},
		{
			"progress",
			`{"id":"3","createTime":"2026-08-01T12:00:02Z","progressUpdated":{"title":"Running tests","description":"go test ./..."}}`,
			ProgressUpdate{Title: "Running tests", Description: "go test ./..."},
		},
		{
			"plan approval requested",
			`{"id":"4","createTime":"2026-08-01T12:00:03Z","planApprovalRequested":{"planId":"p1"}}`,
			PlanApprovalRequested{PlanID: "p1"},
		},
		{
			"plan approved",
			`{"id":"5","createTime":"2026-08-01T12:00:04Z","planApproved":{"planId":"p1"}}`,
			PlanApproved{PlanID: "p1"},
		},
		{
			"session failed",
			`{"id":"6","createTime":"2026-08-01T12:00:05Z","sessionFailed":{"reason":"quota"}}`,
			SessionFailed{Reason: "quota"},
		},
		{
			"session completed",
			`{"id":"7","createTime":"2026-08-01T12:00:06Z","sessionCompleted":{}}`,
			SessionCompleted{},
		},
		{
			"unknown variant tolerated",
			`{"id":"8","createTime":"2026-08-01T12:00:07Z","somethingNew":{"x":1}}`,
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var act Activity
			if err := json.Unmarshal([]byte(tt.raw), &act); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if act.Payload != tt.want {
				t.Fatalf("payload = %#v, want %#v", act.Payload, tt.want)
			}
		})
	}
}

func TestActivityUnmarshalPlanGenerated(t *testing.T) {
	raw := `{
		"id":"9","createTime":"2026-08-01T12:00:08Z",
		"planGenerated":{"plan":{"id":"p2","steps":[{"title":"Read code"},{"title":"Patch","index":1}]}}
	}`
	var act Activity
	if err := json.Unmarshal([]byte(raw), &act); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	pg, ok := act.Payload.(PlanGenerated)
	if !ok {
		t.Fatalf("payload = %#v", act.Payload)
	}
	if pg.PlanID != "p2" || len(pg.Steps) != 2 || pg.Steps[1].Title != "Patch" {
		t.Fatalf("plan = %+v", pg)
	}
}

func TestActivityMarshalRoundTrip(t *testing.T) {
	in := Activity{
		ID:      "a",
		Payload: PlanApprovalRequested{PlanID: "p9"},
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Activity
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Payload != in.Payload {
		t.Fatalf("round trip payload = %#v", out.Payload)
	}
}

func TestSessionPullRequestURL(t *testing.T) {
	tests := []struct {
		name string
		sess Session
		want string
	}{
		{"top level wins", Session{SubmittedPR: "https://g/pr/1", Outputs: []SessionOutput{{PullRequest: &PullRequest{URL: "https://g/pr/2"}}}}, "https://g/pr/1"},
		{"falls back to outputs", Session{Outputs: []SessionOutput{{}, {PullRequest: &PullRequest{URL: "https://g/pr/3"}}}}, "https://g/pr/3"},
		{"none", Session{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sess.PullRequestURL(); got != tt.want {
				t.Fatalf("PullRequestURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionStateHelpers(t *testing.T) {
	if !StateCompleted.Terminal() || !StateFailed.Terminal() {
		t.Fatalf("terminal states misreported")
	}
	if StateInProgress.Terminal() {
		t.Fatalf("IN_PROGRESS reported terminal")
	}

	tests := []struct {
		state SessionState
		want  string
	}{
		{StateCompleted, "stateCompleted"},
		{StateFailed, "stateFailed"},
		{StateUnspecified, "stateUnknown"},
		{"", "stateUnknown"},
		{StatePlanning, "stateActive"},
		{StateAwaitingPlanApproval, "stateActive"},
	}
	for _, tt := range tests {
		if got := tt.state.LabelKey(); got != tt.want {
			t.Fatalf("LabelKey(%q) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestSourceLabel(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		want string
	}{
		{"github repo", Source{Name: "sources/x", GitHubRepo: &GitHubRepo{Owner: "acme", Repo: "api"}}, "acme/api"},
		{"display name", Source{Name: "sources/x", DisplayName: "Acme API"}, "Acme API"},
		{"resource name fallback", Source{Name: "sources/x"}, "sources/x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.src.Label(); got != tt.want {
				t.Fatalf("Label = %q, want %q", got, tt.want)
			}
		})
	}
}
