// package tasks implements long-running operations over the platform client.
//
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/xes/internal/models"
	"github.com/desertthunder/xes/internal/services"
	"github.com/desertthunder/xes/internal/shared"
)

// ExportOpts bounds a thread export.
type ExportOpts struct {
	MaxComments int  // Stop after this many comments, 0 for all
	SkipReplies bool // Do not walk reply listings
}

// Exporter gathers a work's discussion.
type Exporter interface {
	Export(ctx context.Context, work *services.Work, opts ExportOpts, progress chan<- ProgressUpdate) (*models.Thread, error)
}

// ThreadExporter walks comments and their replies one request at a time.
type ThreadExporter struct {
	logger *log.Logger
	now    func() time.Time
}

// NewThreadExporter creates a ThreadExporter. A nil logger discards output.
func NewThreadExporter(logger *log.Logger) *ThreadExporter {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &ThreadExporter{logger: shared.WithLogger(logger, "task", "export"), now: time.Now}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *ThreadExporter) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Export walks every comment of work and, unless disabled, every reply of each comment.
//
// On failure the thread gathered so far is returned alongside the error.
func (e *ThreadExporter) Export(ctx context.Context, work *services.Work, opts ExportOpts, progress chan<- ProgressUpdate) (*models.Thread, error) {
	if work == nil {
		return nil, fmt.Errorf("%w: no work to export", shared.ErrMissingArgument)
	}

	data := work.Data()
	thread := &models.Thread{
		Work:       data,
		Comments:   []models.ThreadComment{},
		ExportedAt: e.now(),
	}

	total := int(data.Comments)
	if opts.MaxComments > 0 && (total == 0 || opts.MaxComments < total) {
		total = opts.MaxComments
	}

	e.sendProgress(progress, startUpdate(data.Name))
	e.logger.Debug("exporting thread", "work", data.ID, "max", opts.MaxComments)

	pager := work.Comments()
	for (opts.MaxComments <= 0 || len(thread.Comments) < opts.MaxComments) && pager.Next(ctx) {
		comment := pager.Value()
		step := len(thread.Comments) + 1
		e.sendProgress(progress, commentUpdate(step, total, comment.Data().Username))

		entry := models.ThreadComment{Comment: comment.Data(), Replies: []models.ReplyData{}}
		if !opts.SkipReplies {
			replies, err := comment.Replies().Collect(ctx, 0)
			for _, r := range replies {
				entry.Replies = append(entry.Replies, r.Data())
			}
			thread.ReplyCount += len(replies)
			if err != nil {
				thread.Comments = append(thread.Comments, entry)
				return thread, fmt.Errorf("failed to fetch replies of comment %d: %w", comment.Data().ID, err)
			}
			e.sendProgress(progress, repliesUpdate(step, total, len(replies)))
		}

		thread.Comments = append(thread.Comments, entry)
	}

	if err := pager.Err(); err != nil {
		return thread, fmt.Errorf("failed to fetch comments: %w", err)
	}

	e.sendProgress(progress, doneUpdate(len(thread.Comments), thread.ReplyCount))
	e.logger.Info("thread exported", "work", data.ID, "comments", len(thread.Comments), "replies", thread.ReplyCount)
	return thread, nil
}
