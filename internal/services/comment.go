package services

import (
	"context"

	"github.com/desertthunder/xes/internal/models"
)

// Comment is a handle on a top-level comment.
type Comment struct {
	client *Client
	user   *User
	data   models.CommentData
}

// NewComment wraps a known comment record.
func NewComment(client *Client, data models.CommentData, user *User) *Comment {
	return &Comment{client: client, data: data, user: user}
}

// Data returns the comment record.
func (c *Comment) Data() models.CommentData { return c.data }

// Send replies to the comment.
func (c *Comment) Send(ctx context.Context, content string) error {
	if c.user == nil {
		return errNotLoggedIn()
	}
	return c.client.submitComment(ctx, c.data.TopicID, int64(c.data.ID), content, c.user)
}

// Replies returns a fresh pager over the comment's replies.
//
// When the embedded reply list is complete the pager yields it without a request.
func (c *Comment) Replies() *Pager[*Reply] {
	if !c.data.ReplyList.HasMore {
		replies := make([]*Reply, len(c.data.ReplyList.Data))
		for i, item := range c.data.ReplyList.Data {
			replies[i] = NewReply(c.client, item, c.user)
		}
		return staticPager(replies)
	}

	topicID, parentID := c.data.TopicID, int64(c.data.ID)
	return NewPager(ReplyPageSize, func(ctx context.Context, page int) ([]*Reply, error) {
		items, err := fetchPage[models.ReplyData](ctx, c.client, topicID, parentID, page, ReplyPageSize, c.user)
		if err != nil {
			return nil, err
		}

		replies := make([]*Reply, len(items))
		for i, item := range items {
			replies[i] = NewReply(c.client, item, c.user)
		}
		return replies, nil
	})
}

// Reply is a handle on a reply under a comment.
type Reply struct {
	client *Client
	user   *User
	data   models.ReplyData
}

// NewReply wraps a known reply record.
func NewReply(client *Client, data models.ReplyData, user *User) *Reply {
	return &Reply{client: client, data: data, user: user}
}

// Data returns the reply record.
func (r *Reply) Data() models.ReplyData { return r.data }

// Send answers the reply in the same thread.
func (r *Reply) Send(ctx context.Context, content string) error {
	if r.user == nil {
		return errNotLoggedIn()
	}
	return r.client.submitComment(ctx, r.data.TopicID, int64(r.data.ID), content, r.user)
}
