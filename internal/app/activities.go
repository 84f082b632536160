package app

import (
	"context"
	"fmt"
	"net/http"
	"sort"
)

// FetchActivities loads up to one page of a session's timeline and returns it
// sorted ascending by creation time. The server's ordering is not trusted.
// On failure the error slot is set and an empty slice is returned.
func (c *Client) FetchActivities(ctx context.Context, sessionName string, silent bool) []Activity {
	c.mu.Lock()
	if !silent {
		c.loading = true
	}
	c.lastErr = ""
	c.mu.Unlock()

	path := fmt.Sprintf("/%s/activities?pageSize=%d", sessionName, c.activitiesPageSize)
	var resp listActivitiesResponse
	err := c.do(ctx, http.MethodGet, path, nil, &resp)

	c.mu.Lock()
	if !silent {
		c.loading = false
	}
	if err != nil {
		c.lastErr = c.message(err, "fetchActivitiesFailed")
		c.mu.Unlock()
		return []Activity{}
	}
	c.mu.Unlock()

	activities := resp.Activities
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].CreateTime.Before(activities[j].CreateTime)
	})
	return activities
}

// NewerActivities reports whether a polled result should replace the held
// list. A longer list always wins. For equal lengths the last item's identity
// and timestamp decide, so in-place updates to the newest activity are still
// adopted; a shorter result is treated as a stale response and dropped.
func NewerActivities(prev, next []Activity) bool {
	if len(next) > len(prev) {
		return true
	}
	if len(next) == 0 || len(next) < len(prev) {
		return false
	}
	last, cand := prev[len(prev)-1], next[len(next)-1]
	return last.ID != cand.ID || !last.CreateTime.Equal(cand.CreateTime)
}

// PendingPlanID returns the plan awaiting user approval in a timeline, or ""
// when the newest approval request has already been approved.
func PendingPlanID(activities []Activity) string {
	for i := len(activities) - 1; i >= 0; i-- {
		switch p := activities[i].Payload.(type) {
		case PlanApproved:
			return ""
		case PlanApprovalRequested:
			return p.PlanID
		}
	}
	return ""
}
