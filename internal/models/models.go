package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// FlexInt decodes a JSON number, a quoted number, an empty string, or null.
type FlexInt int64

// UnmarshalJSON implements [json.Unmarshaler].
func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		b = []byte(s)
	}
	if bytes.EqualFold(b, []byte("true")) {
		*f = 1
		return nil
	}
	if bytes.EqualFold(b, []byte("false")) {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		fl, ferr := strconv.ParseFloat(string(b), 64)
		if ferr != nil {
			return fmt.Errorf("models: cannot decode %q as integer", b)
		}
		n = int64(fl)
	}
	*f = FlexInt(n)
	return nil
}

// String formats the value in base 10.
func (f FlexInt) String() string { return strconv.FormatInt(int64(f), 10) }

// InfoData is the profile of the logged-in account.
type InfoData struct {
	Auth             string  `json:"auth"`
	AvatarDefault    FlexInt `json:"avatar_default"`
	AvatarPath       string  `json:"avatar_path"`
	AvatarVersion    string  `json:"avatar_version"`
	BusinessLineID   FlexInt `json:"bussinessline_id"`
	CreateTime       string  `json:"create_time"`
	Email            string  `json:"email"`
	EnName           string  `json:"en_name"`
	EncryptUserID    string  `json:"encrypt_user_id"`
	GradeAlias       string  `json:"grade_alias"`
	GradeID          FlexInt `json:"grade_id"`
	GradeName        string  `json:"grade_name"`
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Nickname         string  `json:"nickname"`
	Realname         string  `json:"realname"`
	Role             string  `json:"role"`
	Sex              string  `json:"sex"`
	Status           string  `json:"status"`
	TalCgID          FlexInt `json:"tal_cg_id"`
	TalID            string  `json:"tal_id"`
	UID              string  `json:"uid"`
	UserID           string  `json:"user_id"`
	XesEncryptUserID string  `json:"xes_encrypt_uid"`
}

// AssetData describes the asset bundle attached to a work.
type AssetData struct {
	Asset        []json.RawMessage `json:"asset"`
	AssetsURL    string            `json:"assets_url"`
	CDN          []string          `json:"cdn"`
	HideFilelist bool              `json:"hide_filelist"`
}

// WorkData is a published work.
type WorkData struct {
	Adapter         string    `json:"adapter"`
	Asset           AssetData `json:"asset"`
	Audio           string    `json:"audio"`
	Category        FlexInt   `json:"category"`
	CodeComplete    FlexInt   `json:"code_complete"`
	Comments        FlexInt   `json:"comments"`
	CreatedAt       string    `json:"created_at"`
	CreatedSource   string    `json:"created_source"`
	DeletedAt       string    `json:"deleted_at"`
	Description     string    `json:"description"`
	Favorites       FlexInt   `json:"favorites"`
	HiddenCode      FlexInt   `json:"hidden_code"`
	ID              FlexInt   `json:"id"`
	IsCooperation   FlexInt   `json:"is_cooperation"`
	Lang            string    `json:"lang"`
	Likes           FlexInt   `json:"likes"`
	ManualWeight    FlexInt   `json:"manual_weight"`
	ModifiedAt      string    `json:"modified_at"`
	Name            string    `json:"name"`
	OriginalID      FlexInt   `json:"original_id"`
	PopularScore    FlexInt   `json:"popular_score"`
	ProjectType     string    `json:"project_type"`
	Published       FlexInt   `json:"published"`
	PublishedAt     string    `json:"published_at"`
	Removed         FlexInt   `json:"removed"`
	Source          string    `json:"source"`
	SourceCodeViews FlexInt   `json:"source_code_views"`
	Tags            string    `json:"tags"`
	Thumbnail       string    `json:"thumbnail"`
	TopicID         string    `json:"topic_id"`
	Type            string    `json:"type"`
	Unlikes         FlexInt   `json:"unlikes"`
	UpdatedAt       string    `json:"updated_at"`
	UserAvatar      string    `json:"user_avatar"`
	UserID          FlexInt   `json:"user_id"`
	Username        string    `json:"username"`
	Version         string    `json:"version"`
	Video           string    `json:"video"`
	Views           FlexInt   `json:"views"`
	Weight          FlexInt   `json:"weight"`
}

// ReplyData is a reply under a comment.
type ReplyData struct {
	CanDelete          bool    `json:"can_delete"`
	CanTop             bool    `json:"can_top"`
	CommentFrom        string  `json:"comment_from"`
	Content            string  `json:"content"`
	CreatedAt          string  `json:"created_at"`
	ID                 FlexInt `json:"id"`
	IsLike             bool    `json:"is_like"`
	IsTopicAuthorLike  bool    `json:"is_topic_author_like"`
	IsTopicAuthorReply bool    `json:"is_topic_author_reply"`
	IsUnlike           bool    `json:"is_unlike"`
	Likes              FlexInt `json:"likes"`
	ParentID           FlexInt `json:"parent_id"`
	Removed            bool    `json:"removed"`
	ReplyUserID        string  `json:"reply_user_id"`
	ReplyUsername      string  `json:"reply_username"`
	TargetID           FlexInt `json:"target_id"`
	TopicID            string  `json:"topic_id"`
	Unlikes            FlexInt `json:"unlikes"`
	UserAvatarPath     string  `json:"user_avatar_path"`
	UserID             string  `json:"user_id"`
	Username           string  `json:"username"`
}

// ReplyListData is the reply preview embedded in a comment.
type ReplyListData struct {
	Data    []ReplyData `json:"data"`
	HasMore bool        `json:"hasMore"`
	Total   FlexInt     `json:"total"`
}

// CommentData is a top-level comment.
type CommentData struct {
	CanDelete          bool          `json:"can_delete"`
	CanTop             bool          `json:"can_top"`
	CommentFrom        string        `json:"comment_from"`
	Content            string        `json:"content"`
	CreatedAt          string        `json:"create_at"`
	ID                 FlexInt       `json:"id"`
	IsLike             bool          `json:"is_like"`
	IsTopicAuthorLike  bool          `json:"is_topic_author_like"`
	IsTopicAuthorReply bool          `json:"is_topic_author_reply"`
	IsUnlike           bool          `json:"is_unlike"`
	Likes              FlexInt       `json:"likes"`
	Removed            FlexInt       `json:"removed"`
	Replies            FlexInt       `json:"replies"`
	ReplyList          ReplyListData `json:"reply_list"`
	Top                FlexInt       `json:"top"`
	TopicID            string        `json:"topic_id"`
	Unlikes            FlexInt       `json:"unlikes"`
	UserAvatarPath     string        `json:"user_avatar_path"`
	UserID             string        `json:"user_id"`
	Username           string        `json:"username"`
}

// Page is one page of a comment or reply listing.
type Page[T any] struct {
	Data    []T     `json:"data"`
	Page    FlexInt `json:"page"`
	PerPage FlexInt `json:"per_page"`
}

// TalTokenData is the payload of a successful password login.
type TalTokenData struct {
	Code          string `json:"code"`
	PassportToken string `json:"passport_token"`
}

// CaptchaData is the payload of a captcha request.
type CaptchaData struct {
	Captcha string `json:"captcha"`
}

// ThreadComment is a comment together with all of its replies.
type ThreadComment struct {
	Comment CommentData `json:"comment"`
	Replies []ReplyData `json:"replies"`
}

// Thread is the full discussion under a work, as gathered by an export.
type Thread struct {
	Work       WorkData        `json:"work"`
	Comments   []ThreadComment `json:"comments"`
	ReplyCount int             `json:"reply_count"`
	ExportedAt time.Time       `json:"exported_at"`
}
