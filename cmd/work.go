package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/xes/internal/formatter"
	"github.com/desertthunder/xes/internal/models"
	"github.com/desertthunder/xes/internal/services"
	"github.com/desertthunder/xes/internal/shared"
	"github.com/desertthunder/xes/internal/tasks"
	"github.com/urfave/cli/v3"
)

func (r *Runner) fetchWork(ctx context.Context, cmd *cli.Command) (*services.Work, error) {
	id, err := parseID("id", cmd.StringArg("id"))
	if err != nil {
		return nil, err
	}

	r.logger.Debug("fetching work", "id", id)
	return r.client.GetWork(ctx, id, r.session(cmd))
}

// findComment walks the work's comments until one with the given id shows up.
func findComment(ctx context.Context, work *services.Work, id int64) (*services.Comment, error) {
	pager := work.Comments()
	for pager.Next(ctx) {
		if c := pager.Value(); int64(c.Data().ID) == id {
			return c, nil
		}
	}
	if err := pager.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %d", shared.ErrCommentNotFound, id)
}

func findReply(ctx context.Context, comment *services.Comment, id int64) (*services.Reply, error) {
	pager := comment.Replies()
	for pager.Next(ctx) {
		if reply := pager.Value(); int64(reply.Data().ID) == id {
			return reply, nil
		}
	}
	if err := pager.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: reply %d", shared.ErrCommentNotFound, id)
}

func (r *Runner) fetchComment(ctx context.Context, cmd *cli.Command) (*services.Work, *services.Comment, error) {
	work, err := r.fetchWork(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}

	id, err := parseID("comment", cmd.StringArg("comment"))
	if err != nil {
		return nil, nil, err
	}

	comment, err := findComment(ctx, work, id)
	if err != nil {
		return nil, nil, err
	}
	return work, comment, nil
}

// WorkGet prints a work's details.
func (r *Runner) WorkGet(ctx context.Context, cmd *cli.Command) error {
	work, err := r.fetchWork(ctx, cmd)
	if err != nil {
		return err
	}

	data := work.Data()
	if cmd.Bool("json") {
		return r.writeJSON(data, true)
	}

	r.writePlainHeader(data.Name)
	r.writePlain("ID: %d\n", data.ID)
	r.writePlain("Author: %s\n", data.Username)
	r.writePlain("Language: %s\n", data.Lang)
	r.writePlain("Published: %s\n", data.PublishedAt)
	r.writePlain("Likes: %d | Unlikes: %d | Views: %d | Comments: %d\n", data.Likes, data.Unlikes, data.Views, data.Comments)
	if data.Description != "" {
		r.writePlainln("%s", data.Description)
	}
	return nil
}

// WorkLike likes a work.
func (r *Runner) WorkLike(ctx context.Context, cmd *cli.Command) error {
	work, err := r.fetchWork(ctx, cmd)
	if err != nil {
		return err
	}

	if err := work.Like(ctx); err != nil {
		return err
	}

	data := work.Data()
	r.writePlain("✓ Liked %q (likes: %d)\n", data.Name, data.Likes)
	return nil
}

// WorkUnlike unlikes a work.
func (r *Runner) WorkUnlike(ctx context.Context, cmd *cli.Command) error {
	work, err := r.fetchWork(ctx, cmd)
	if err != nil {
		return err
	}

	if err := work.Unlike(ctx); err != nil {
		return err
	}

	data := work.Data()
	r.writePlain("✓ Unliked %q (unlikes: %d)\n", data.Name, data.Unlikes)
	return nil
}

// WorkComment posts a top-level comment.
func (r *Runner) WorkComment(ctx context.Context, cmd *cli.Command) error {
	work, err := r.fetchWork(ctx, cmd)
	if err != nil {
		return err
	}

	if err := work.Send(ctx, cmd.String("content")); err != nil {
		return err
	}

	r.writePlain("✓ Commented on %q\n", work.Data().Name)
	return nil
}

// WorkComments lists comments, newest first.
func (r *Runner) WorkComments(ctx context.Context, cmd *cli.Command) error {
	work, err := r.fetchWork(ctx, cmd)
	if err != nil {
		return err
	}

	comments, err := work.Comments().Collect(ctx, int(cmd.Int("limit")))
	if err != nil && len(comments) == 0 {
		return err
	}
	if err != nil {
		r.logger.Warn("comment listing stopped early", "fetched", len(comments), "err", err)
	}

	if cmd.Bool("json") {
		data := make([]models.CommentData, 0, len(comments))
		for _, c := range comments {
			data = append(data, c.Data())
		}
		if werr := r.writeJSON(data, true); werr != nil {
			return werr
		}
		return err
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d comments)", work.Data().Name, len(comments)))
	for _, c := range comments {
		d := c.Data()
		r.writePlain("[%d] %s (%s) 👍 %d\n", d.ID, d.Username, d.CreatedAt, d.Likes)
		r.writePlain("    %s\n", indent(d.Content))
		if d.Replies > 0 {
			r.writePlain("    ↳ %d replies\n", d.Replies)
		}
	}
	return err
}

// WorkReplies lists the replies of one comment.
func (r *Runner) WorkReplies(ctx context.Context, cmd *cli.Command) error {
	_, comment, err := r.fetchComment(ctx, cmd)
	if err != nil {
		return err
	}

	replies, err := comment.Replies().Collect(ctx, int(cmd.Int("limit")))
	if err != nil && len(replies) == 0 {
		return err
	}

	if cmd.Bool("json") {
		data := make([]models.ReplyData, 0, len(replies))
		for _, reply := range replies {
			data = append(data, reply.Data())
		}
		if werr := r.writeJSON(data, true); werr != nil {
			return werr
		}
		return err
	}

	d := comment.Data()
	r.writePlain("[%d] %s: %s\n", d.ID, d.Username, indent(d.Content))
	for _, reply := range replies {
		rd := reply.Data()
		to := ""
		if rd.ReplyUsername != "" {
			to = " → " + rd.ReplyUsername
		}
		r.writePlain("    [%d] %s%s: %s\n", rd.ID, rd.Username, to, indent(rd.Content))
	}
	return err
}

// WorkReply answers a comment, or one of its replies when --to is set.
func (r *Runner) WorkReply(ctx context.Context, cmd *cli.Command) error {
	_, comment, err := r.fetchComment(ctx, cmd)
	if err != nil {
		return err
	}

	content := cmd.String("content")
	if to := cmd.String("to"); to != "" {
		id, err := parseID("to", to)
		if err != nil {
			return err
		}
		reply, err := findReply(ctx, comment, id)
		if err != nil {
			return err
		}
		if err := reply.Send(ctx, content); err != nil {
			return err
		}
		r.writePlain("✓ Replied to %s\n", reply.Data().Username)
		return nil
	}

	if err := comment.Send(ctx, content); err != nil {
		return err
	}
	r.writePlain("✓ Replied to %s\n", comment.Data().Username)
	return nil
}

// WorkExport writes a work's discussion to a file or stdout.
func (r *Runner) WorkExport(ctx context.Context, cmd *cli.Command) error {
	format := formatter.NormalizeFormat(cmd.String("format"))
	if !formatter.Supported(format) {
		return fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, cmd.String("format"))
	}
	output := cmd.String("output")

	work, err := r.fetchWork(ctx, cmd)
	if err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchWork, tasks.Done:
				r.logger.Info(update.Message)
			default:
				r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
			}
		}
	}()

	thread, exportErr := r.exporter.Export(ctx, work, tasks.ExportOpts{
		MaxComments: int(cmd.Int("max")),
		SkipReplies: cmd.Bool("skip-replies"),
	}, progressCh)
	close(progressCh)
	<-done

	if thread == nil {
		return exportErr
	}
	if exportErr != nil {
		r.logger.Warn("export incomplete, writing partial thread", "err", exportErr)
	}

	if output == "-" {
		data, err := formatter.Export(thread, format)
		if err != nil {
			return err
		}
		if _, err := r.output.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return exportErr
	}

	path, err := formatter.WriteExport(thread, format, output)
	if err != nil {
		return err
	}

	r.writePlain("✓ Exported %d comments and %d replies to %s\n", len(thread.Comments), thread.ReplyCount, path)
	return exportErr
}

func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n    ")
}
