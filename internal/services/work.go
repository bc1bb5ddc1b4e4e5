package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/desertthunder/xes/internal/models"
	"github.com/desertthunder/xes/internal/shared"
)

// Listing page sizes.
const (
	CommentPageSize = 15
	ReplyPageSize   = 10
)

const (
	commentsPath      = "/api/comments"
	commentSubmitPath = "/api/comments/submit"
)

// Work is a handle on a published work.
//
// Reads work without a session. Writes require one and fail with an [APIError]
// wrapping [shared.ErrNotAuthenticated] before any request otherwise.
type Work struct {
	client *Client
	user   *User

	mu   sync.RWMutex
	data models.WorkData
}

// NewWork wraps a known work record.
func NewWork(client *Client, data models.WorkData, user *User) *Work {
	return &Work{client: client, data: data, user: user}
}

// GetWork fetches work id. user may be nil for an anonymous read.
func (c *Client) GetWork(ctx context.Context, id int64, user *User) (*Work, error) {
	resp, err := c.codeGet(ctx, fmt.Sprintf("/api/compilers/v2/%d", id), user)
	if err != nil {
		return nil, err
	}

	data, err := decodeCode[models.WorkData](c, resp, true)
	if err != nil {
		return nil, err
	}
	return NewWork(c, *data, user), nil
}

// Data returns a snapshot of the work record, including local counter updates.
func (w *Work) Data() models.WorkData {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.data
}

// User returns the session the handle was created with.
func (w *Work) User() *User { return w.user }

// Like likes the work and bumps the local like counter by one.
func (w *Work) Like(ctx context.Context) error {
	return w.vote(ctx, "like", func(d *models.WorkData) { d.Likes++ })
}

// Unlike dislikes the work and bumps the local unlike counter by one.
func (w *Work) Unlike(ctx context.Context) error {
	return w.vote(ctx, "unlike", func(d *models.WorkData) { d.Unlikes++ })
}

func (w *Work) vote(ctx context.Context, action string, apply func(*models.WorkData)) error {
	if w.user == nil {
		return errNotLoggedIn()
	}

	data := w.Data()
	id := data.ID.String()
	body := map[string]any{
		"params": map[string]string{"id": id, "lang": "code", "form": data.Lang},
	}

	resp, err := w.client.codePost(ctx, "/api/compilers/"+id+"/"+action, body, w.user)
	if err != nil {
		return err
	}
	if _, err := decodeCode[json.RawMessage](w.client, resp, false); err != nil {
		return err
	}

	w.mu.Lock()
	apply(&w.data)
	w.mu.Unlock()
	return nil
}

// Send posts a top-level comment on the work.
func (w *Work) Send(ctx context.Context, content string) error {
	if w.user == nil {
		return errNotLoggedIn()
	}
	return w.client.submitComment(ctx, w.Data().TopicID, 0, content, w.user)
}

// Comments returns a fresh pager over the work's comments, newest first.
func (w *Work) Comments() *Pager[*Comment] {
	topicID := w.Data().TopicID
	return NewPager(CommentPageSize, func(ctx context.Context, page int) ([]*Comment, error) {
		items, err := fetchPage[models.CommentData](ctx, w.client, topicID, 0, page, CommentPageSize, w.user)
		if err != nil {
			return nil, err
		}

		comments := make([]*Comment, len(items))
		for i, item := range items {
			comments[i] = NewComment(w.client, item, w.user)
		}
		return comments, nil
	})
}

func (c *Client) submitComment(ctx context.Context, topicID string, targetID int64, content string, user *User) error {
	if strings.TrimSpace(content) == "" {
		return &APIError{What: "content is required", kind: shared.ErrInvalidInput}
	}

	body := map[string]any{
		"appid":     c.cfg.AppID,
		"content":   content,
		"target_id": targetID,
		"topic_id":  topicID,
	}

	resp, err := c.codePost(ctx, commentSubmitPath, body, user)
	if err != nil {
		return err
	}
	_, err = decodeCode[json.RawMessage](c, resp, false)
	return err
}

func fetchPage[T any](ctx context.Context, c *Client, topicID string, parentID int64, page, perPage int, user *User) ([]T, error) {
	q := url.Values{
		"appid":      {strconv.Itoa(c.cfg.AppID)},
		"topic_id":   {topicID},
		"parent_id":  {strconv.FormatInt(parentID, 10)},
		"order_type": {"time"},
		"page":       {strconv.Itoa(page)},
		"per_page":   {strconv.Itoa(perPage)},
	}

	resp, err := c.codeGet(ctx, commentsPath+"?"+q.Encode(), user)
	if err != nil {
		return nil, err
	}

	data, err := decodeCode[models.Page[T]](c, resp, true)
	if err != nil {
		return nil, err
	}
	return data.Data, nil
}
