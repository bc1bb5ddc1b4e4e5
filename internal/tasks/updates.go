package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase, 0 when unknown
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchWork Phase = iota
	FetchComments
	FetchReplies
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchWork:
		return "fetch_work"
	case FetchComments:
		return "fetch_comments"
	case FetchReplies:
		return "fetch_replies"
	case Done:
		return "done"
	default:
		return ""
	}
}

func startUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchWork,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Exporting comments of %q...", name),
	}
}

func commentUpdate(step, total int, username string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchComments,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d] comment by %s", step, username),
	}
}

func repliesUpdate(step, total, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchReplies,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d] %d replies", step, count),
		Data:    count,
	}
}

func doneUpdate(comments, replies int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    comments,
		Total:   comments,
		Message: fmt.Sprintf("Exported %d comments and %d replies", comments, replies),
	}
}
