package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/xes/internal/models"
	"github.com/desertthunder/xes/internal/shared"
	tu "github.com/desertthunder/xes/internal/testing"
)

func newTestClient(t *testing.T) (*Client, *tu.FakeServer) {
	t.Helper()

	srv := tu.NewFakeServer(t)
	cfg := shared.DefaultConfig().API
	cfg.PassportURL = srv.URL
	cfg.LoginURL = srv.URL
	cfg.CodeURL = srv.URL
	cfg.DeviceID = "device-1"

	return NewClient(ClientOpts{Config: &cfg, HTTPClient: srv.Client()}), srv
}

func TestNewClient(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		c := NewClient(ClientOpts{})

		assert.Equal(t, "https://passport.100tal.com", c.passport.baseURL)
		assert.Equal(t, 1001108, c.AppID())
		assert.NotEmpty(t, c.DeviceID(), "expected a generated device id")
		assert.NotNil(t, c.logger)
	})

	t.Run("Configured Device ID", func(t *testing.T) {
		c, _ := newTestClient(t)
		assert.Equal(t, "device-1", c.DeviceID())
	})

	t.Run("Rate Limited", func(t *testing.T) {
		cfg := shared.DefaultConfig().API
		cfg.RequestsPerSecond = 5
		c := NewClient(ClientOpts{Config: &cfg})

		assert.InDelta(t, 5.0, float64(c.limiter.Limit()), 0.001)
	})

	t.Run("Cancelled Context Never Reaches Network", func(t *testing.T) {
		c, srv := newTestClient(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.Info(ctx, UserFromTokens("t", "r"))

		assert.Error(t, err)
		assert.Zero(t, srv.TotalHits())
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("End To End", func(t *testing.T) {
		c, srv := newTestClient(t)

		challenge, err := c.Login(ctx, "user", "pass")
		require.NoError(t, err)
		assert.Equal(t, "data:image/jpeg;base64,QUJD", challenge.Image())
		assert.Equal(t, "user", challenge.Username())

		form := srv.Form(tu.RouteCaptcha)
		assert.Equal(t, "user", form.Get("symbol"))
		assert.Equal(t, "pass", form.Get("password"))
		assert.Equal(t, "3", form.Get("scene"))

		header := srv.Header(tu.RouteCaptcha)
		assert.Equal(t, "111101", header.Get("client-id"))
		assert.Equal(t, "device-1", header.Get("device-id"))
		assert.Equal(t, "0.0.0", header.Get("ver-num"))

		img, err := challenge.ImageBytes()
		require.NoError(t, err)
		assert.Equal(t, []byte("ABC"), img)

		user, err := c.Resolve(ctx, challenge, "ab12")
		require.NoError(t, err)
		assert.Equal(t, "tal-value", user.TalToken())
		assert.Equal(t, "rfh-value", user.XesRfh())

		assert.Equal(t, "ab12", srv.Form(tu.RoutePassword).Get("captcha"))
		assert.Equal(t, "X", srv.Form(tu.RouteToken).Get("code"))
		assert.Equal(t, 1, srv.Hits(tu.RouteToken))
	})

	t.Run("Captcha Rejected", func(t *testing.T) {
		c, srv := newTestClient(t)
		srv.Captcha = tu.PassportErr(11001, "账号或密码错误")

		_, err := c.Login(ctx, "user", "wrong")

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "账号或密码错误", apiErr.What)
	})

	t.Run("Empty Credentials", func(t *testing.T) {
		c, srv := newTestClient(t)

		_, err := c.Login(ctx, " ", "pass")

		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.Zero(t, srv.TotalHits())
	})

	t.Run("Wrong Captcha", func(t *testing.T) {
		c, srv := newTestClient(t)
		srv.Password = tu.PassportErr(11002, "验证码错误")

		challenge, err := c.Login(ctx, "user", "pass")
		require.NoError(t, err)

		_, err = challenge.Resolve(ctx, "zzzz")
		assert.Equal(t, "验证码错误", Message(err))
		assert.Zero(t, srv.Hits(tu.RouteToken), "exchange must not run after a failed login")
	})

	t.Run("Challenge Is One Shot", func(t *testing.T) {
		c, srv := newTestClient(t)

		challenge, err := c.Login(ctx, "user", "pass")
		require.NoError(t, err)

		_, err = challenge.Resolve(ctx, "")
		require.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.False(t, challenge.Used(), "validation failures do not consume the challenge")

		_, err = challenge.Resolve(ctx, "ab12")
		require.NoError(t, err)

		_, err = challenge.Resolve(ctx, "ab12")
		assert.ErrorIs(t, err, shared.ErrCaptchaConsumed)
		assert.Equal(t, 1, srv.Hits(tu.RoutePassword))
	})

	t.Run("Missing Cookies Are Lenient", func(t *testing.T) {
		c, srv := newTestClient(t)
		srv.TokenCookies = []*http.Cookie{{Name: "tal_token", Value: "only"}}

		challenge, err := c.Login(ctx, "user", "pass")
		require.NoError(t, err)

		user, err := challenge.Resolve(ctx, "ab12")
		require.NoError(t, err)
		assert.Equal(t, "only", user.TalToken())
		assert.Equal(t, "", user.XesRfh())
	})

	t.Run("Exchange Failure", func(t *testing.T) {
		c, srv := newTestClient(t)
		srv.TokenStatus = http.StatusInternalServerError

		challenge, err := c.Login(ctx, "user", "pass")
		require.NoError(t, err)

		_, err = challenge.Resolve(ctx, "ab12")
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
	})

	t.Run("Unbound Challenge", func(t *testing.T) {
		c, srv := newTestClient(t)
		challenge := NewCaptcha(nil, "user", "pass", "data:image/jpeg;base64,QUJD")

		user, err := c.Resolve(ctx, challenge, "ab12")

		require.NoError(t, err)
		assert.Equal(t, "tal-value", user.TalToken())
		assert.Equal(t, 1, srv.Hits(tu.RoutePassword))
	})

	t.Run("Unbound Challenge Without Client", func(t *testing.T) {
		challenge := NewCaptcha(nil, "user", "pass", "data:image/jpeg;base64,QUJD")

		_, err := challenge.Resolve(ctx, "ab12")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.False(t, challenge.Used())
	})

	t.Run("Concurrent Resolve Binds Once", func(t *testing.T) {
		c, srv := newTestClient(t)
		challenge := NewCaptcha(nil, "user", "pass", "data:image/jpeg;base64,QUJD")

		errs := make([]error, 2)
		var wg sync.WaitGroup
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = c.Resolve(ctx, challenge, "ab12")
			}()
		}
		wg.Wait()

		consumed := 0
		for _, err := range errs {
			if errors.Is(err, shared.ErrCaptchaConsumed) {
				consumed++
			} else {
				assert.NoError(t, err)
			}
		}
		assert.Equal(t, 1, consumed)
		assert.Equal(t, 1, srv.Hits(tu.RoutePassword))
	})
}

func TestUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Accessors", func(t *testing.T) {
		u := NewUser([]*http.Cookie{{Name: "tal_token", Value: "a"}, {Name: "xes_rfh", Value: "b"}, {Name: "other", Value: "c"}})

		assert.Equal(t, "a", u.TalToken())
		assert.Equal(t, "b", u.XesRfh())
		assert.Equal(t, "c", u.Cookie("other"))
		assert.True(t, u.HasSession())

		cookies := u.Cookies()
		require.Len(t, cookies, 2)
		assert.Equal(t, "tal_token=a", cookies[0].String())
		assert.Equal(t, "xes_rfh=b", cookies[1].String())
	})

	t.Run("Empty", func(t *testing.T) {
		u := UserFromTokens("", "")

		assert.Equal(t, "", u.TalToken())
		assert.False(t, u.HasSession())
		assert.Empty(t, u.Cookies())

		var nilUser *User
		assert.Equal(t, "", nilUser.XesRfh())
		assert.Empty(t, nilUser.Cookies())
	})

	t.Run("Info", func(t *testing.T) {
		c, srv := newTestClient(t)

		info, err := c.Info(ctx, UserFromTokens("tal", "rfh"))
		require.NoError(t, err)

		want := models.InfoData{ID: "42", Nickname: "tester", Realname: "Test"}
		if diff := cmp.Diff(want, *info); diff != "" {
			t.Errorf("info mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, map[string]string{"tal_token": "tal", "xes_rfh": "rfh"}, srv.Cookies(tu.RouteInfo))
		assert.Equal(t, "_", srv.Header(tu.RouteInfo).Get("User-Agent"))
	})

	t.Run("Info Without Data", func(t *testing.T) {
		c, srv := newTestClient(t)
		srv.Info = tu.CodeOK(nil)

		_, err := c.Info(ctx, UserFromTokens("tal", "rfh"))
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
	})

	t.Run("Info Without Session", func(t *testing.T) {
		c, srv := newTestClient(t)

		_, err := c.Info(ctx, nil)
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
		assert.Equal(t, "未登录", Message(err))
		assert.Zero(t, srv.TotalHits())
	})
}

func workFixture(likes int) map[string]any {
	return tu.CodeOK(map[string]any{
		"id":       "7",
		"name":     "demo",
		"lang":     "python",
		"likes":    likes,
		"unlikes":  0,
		"topic_id": "CP_7",
	})
}

func TestWork(t *testing.T) {
	ctx := context.Background()
	user := UserFromTokens("tal", "rfh")

	t.Run("GetWork", func(t *testing.T) {
		c, srv := newTestClient(t)
		srv.Works["7"] = workFixture(10)

		w, err := c.GetWork(ctx, 7, nil)
		require.NoError(t, err)

		data := w.Data()
		assert.Equal(t, models.FlexInt(7), data.ID)
		assert.Equal(t, "CP_7", data.TopicID)
		assert.Empty(t, srv.Cookies(tu.RouteWork), "anonymous reads send no cookies")
	})

	t.Run("GetWork Not Found", func(t *testing.T) {
		c, _ := newTestClient(t)

		_, err := c.GetWork(ctx, 404, nil)
		assert.Equal(t, "作品不存在", Message(err))
	})

	t.Run("Like Increments By One", func(t *testing.T) {
		c, srv := newTestClient(t)
		srv.Works["7"] = workFixture(10)
		srv.Vote = tu.CodeOK(map[string]any{"likes": 999})

		w, err := c.GetWork(ctx, 7, user)
		require.NoError(t, err)
		require.NoError(t, w.Like(ctx))

		assert.Equal(t, models.FlexInt(11), w.Data().Likes)
		assert.Equal(t, models.FlexInt(0), w.Data().Unlikes)

		var body struct {
			Params map[string]string `json:"params"`
		}
		require.NoError(t, json.Unmarshal(srv.Body(tu.RouteVote), &body))
		assert.Equal(t, map[string]string{"id": "7", "lang": "code", "form": "python"}, body.Params)
		assert.Equal(t, "rfh", srv.Cookies(tu.RouteVote)["xes_rfh"])
	})

	t.Run("Unlike Increments Unlikes", func(t *testing.T) {
		c, srv := newTestClient(t)
		srv.Works["7"] = workFixture(10)

		w, err := c.GetWork(ctx, 7, user)
		require.NoError(t, err)
		require.NoError(t, w.Unlike(ctx))

		assert.Equal(t, models.FlexInt(10), w.Data().Likes)
		assert.Equal(t, models.FlexInt(1), w.Data().Unlikes)
	})

	t.Run("Like Rejected Leaves Counter", func(t *testing.T) {
		c, srv := newTestClient(t)
		srv.Works["7"] = workFixture(10)
		srv.Vote = tu.CodeErr("操作太频繁")

		w, err := c.GetWork(ctx, 7, user)
		require.NoError(t, err)

		err = w.Like(ctx)
		assert.Equal(t, "操作太频繁", Message(err))
		assert.Equal(t, models.FlexInt(10), w.Data().Likes)
	})

	t.Run("Send", func(t *testing.T) {
		c, srv := newTestClient(t)
		w := NewWork(c, models.WorkData{ID: 7, TopicID: "CP_7"}, user)

		require.NoError(t, w.Send(ctx, "nice"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(srv.Body(tu.RouteSubmit), &body))
		assert.Equal(t, map[string]any{
			"appid":     float64(1001108),
			"content":   "nice",
			"target_id": float64(0),
			"topic_id":  "CP_7",
		}, body)
	})

	t.Run("Send Empty Content", func(t *testing.T) {
		c, srv := newTestClient(t)
		w := NewWork(c, models.WorkData{ID: 7, TopicID: "CP_7"}, user)

		assert.ErrorIs(t, w.Send(ctx, "  "), shared.ErrInvalidInput)
		assert.Zero(t, srv.TotalHits())
	})

	t.Run("Writes Require Session", func(t *testing.T) {
		c, srv := newTestClient(t)
		w := NewWork(c, models.WorkData{ID: 7, TopicID: "CP_7"}, nil)
		comment := NewComment(c, models.CommentData{ID: 1, TopicID: "CP_7"}, nil)
		reply := NewReply(c, models.ReplyData{ID: 2, TopicID: "CP_7"}, nil)

		for name, fn := range map[string]func() error{
			"like":    func() error { return w.Like(ctx) },
			"unlike":  func() error { return w.Unlike(ctx) },
			"send":    func() error { return w.Send(ctx, "x") },
			"comment": func() error { return comment.Send(ctx, "x") },
			"reply":   func() error { return reply.Send(ctx, "x") },
		} {
			err := fn()

			assert.ErrorIs(t, err, shared.ErrNotAuthenticated, name)
			assert.Equal(t, "未登录", Message(err), name)
		}
		assert.Zero(t, srv.TotalHits())
		assert.Equal(t, models.FlexInt(0), w.Data().Likes)
	})
}

func TestComments(t *testing.T) {
	ctx := context.Background()

	t.Run("Full Pages Then Short Page", func(t *testing.T) {
		c, srv := newTestClient(t)
		P := CommentPageSize
		srv.SetPages("0",
			tu.Items(0, P, "CP_7"),
			tu.Items(P, P, "CP_7"),
			tu.Items(2*P, P, "CP_7"),
			tu.Items(3*P, 4, "CP_7"),
		)
		w := NewWork(c, models.WorkData{ID: 7, TopicID: "CP_7"}, nil)

		pager := w.Comments()
		got, err := pager.Collect(ctx, 0)

		require.NoError(t, err)
		assert.Len(t, got, 3*P+4)
		assert.Equal(t, 4, pager.Requests())
		assert.Equal(t, 4, srv.Hits(tu.RouteComments))
		for i, cm := range got {
			assert.Equal(t, models.FlexInt(i), cm.Data().ID)
		}
	})

	t.Run("Exact Multiple Ends On Empty Page", func(t *testing.T) {
		c, srv := newTestClient(t)
		srv.SetPages("0", tu.Items(0, CommentPageSize, "CP_7"))
		w := NewWork(c, models.WorkData{ID: 7, TopicID: "CP_7"}, nil)

		got, err := w.Comments().Collect(ctx, 0)

		require.NoError(t, err)
		assert.Len(t, got, CommentPageSize)
		assert.Equal(t, 2, srv.Hits(tu.RouteComments))
	})

	t.Run("Query", func(t *testing.T) {
		c, srv := newTestClient(t)
		w := NewWork(c, models.WorkData{ID: 7, TopicID: "CP_7"}, UserFromTokens("", "rfh"))

		_, err := w.Comments().Collect(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, "appid=1001108&order_type=time&page=1&parent_id=0&per_page=15&topic_id=CP_7", srv.Query(tu.RouteComments).Encode())
		assert.Equal(t, map[string]string{"xes_rfh": "rfh"}, srv.Cookies(tu.RouteComments))
	})

	t.Run("Failure Keeps Yielded Elements", func(t *testing.T) {
		c, srv := newTestClient(t)
		srv.SetPages("0", tu.Items(0, CommentPageSize, "CP_7"), tu.Items(15, CommentPageSize, "CP_7"))
		srv.FailPage["0"] = 2
		w := NewWork(c, models.WorkData{ID: 7, TopicID: "CP_7"}, nil)

		pager := w.Comments()
		got, err := pager.Collect(ctx, 0)

		assert.Len(t, got, CommentPageSize)
		assert.Equal(t, "服务器错误", Message(err))
		assert.False(t, pager.Next(ctx), "a failed pager stays stopped")
		assert.Equal(t, 2, srv.Hits(tu.RouteComments))
	})

	t.Run("Fresh Cursor Per Call", func(t *testing.T) {
		c, srv := newTestClient(t)
		srv.SetPages("0", tu.Items(0, 3, "CP_7"))
		w := NewWork(c, models.WorkData{ID: 7, TopicID: "CP_7"}, nil)

		first, err := w.Comments().Collect(ctx, 0)
		require.NoError(t, err)
		second, err := w.Comments().Collect(ctx, 0)
		require.NoError(t, err)

		assert.Len(t, first, 3)
		assert.Len(t, second, 3)
		assert.Equal(t, 2, srv.Hits(tu.RouteComments))
	})

	t.Run("Collect Limit Stops Fetching", func(t *testing.T) {
		c, srv := newTestClient(t)
		srv.SetPages("0", tu.Items(0, CommentPageSize, "CP_7"), tu.Items(15, CommentPageSize, "CP_7"))
		w := NewWork(c, models.WorkData{ID: 7, TopicID: "CP_7"}, nil)

		got, err := w.Comments().Collect(ctx, 5)

		require.NoError(t, err)
		assert.Len(t, got, 5)
		assert.Equal(t, 1, srv.Hits(tu.RouteComments))
	})
}

func TestReplies(t *testing.T) {
	ctx := context.Background()
	user := UserFromTokens("tal", "rfh")

	t.Run("Inline Short Circuit", func(t *testing.T) {
		c, srv := newTestClient(t)
		comment := NewComment(c, models.CommentData{
			ID:      5,
			TopicID: "CP_7",
			ReplyList: models.ReplyListData{
				Data:    []models.ReplyData{{ID: 1}, {ID: 2}},
				HasMore: false,
			},
		}, nil)

		pager := comment.Replies()
		got, err := pager.Collect(ctx, 0)

		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Zero(t, pager.Requests())
		assert.Zero(t, srv.TotalHits())
	})

	t.Run("Paged When More", func(t *testing.T) {
		c, srv := newTestClient(t)
		P := ReplyPageSize
		srv.SetPages("5", tu.Items(0, P, "CP_7"), tu.Items(P, P, "CP_7"), tu.Items(2*P, P, "CP_7"), tu.Items(3*P, 1, "CP_7"))
		comment := NewComment(c, models.CommentData{
			ID:        5,
			TopicID:   "CP_7",
			ReplyList: models.ReplyListData{Data: []models.ReplyData{{ID: 100}}, HasMore: true},
		}, user)

		pager := comment.Replies()
		var got []*Reply
		for r, err := range pager.All(ctx) {
			require.NoError(t, err)
			got = append(got, r)
		}

		assert.Len(t, got, 3*P+1)
		assert.Equal(t, 4, pager.Requests())
		assert.Equal(t, models.FlexInt(0), got[0].Data().ID, "inline preview is not yielded when paging")
	})

	t.Run("All Yields Error Last", func(t *testing.T) {
		c, srv := newTestClient(t)
		srv.FailPage["5"] = 1
		comment := NewComment(c, models.CommentData{ID: 5, TopicID: "CP_7", ReplyList: models.ReplyListData{HasMore: true}}, nil)

		var errs []error
		for _, err := range comment.Replies().All(ctx) {
			errs = append(errs, err)
		}

		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], shared.ErrAPIRequest)
	})

	t.Run("Send Targets Comment", func(t *testing.T) {
		c, srv := newTestClient(t)
		comment := NewComment(c, models.CommentData{ID: 5, TopicID: "CP_7"}, user)

		require.NoError(t, comment.Send(ctx, "thanks"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(srv.Body(tu.RouteSubmit), &body))
		assert.Equal(t, float64(5), body["target_id"])
		assert.Equal(t, "CP_7", body["topic_id"])
	})

	t.Run("Reply Send Targets Reply", func(t *testing.T) {
		c, srv := newTestClient(t)
		reply := NewReply(c, models.ReplyData{ID: 9, TopicID: "CP_7"}, user)

		require.NoError(t, reply.Send(ctx, "re"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(srv.Body(tu.RouteSubmit), &body))
		assert.Equal(t, float64(9), body["target_id"])
	})

	t.Run("Send Rejected", func(t *testing.T) {
		c, srv := newTestClient(t)
		srv.Submit = map[string]any{"stat": 0, "msg": "", "message": "内容违规"}
		reply := NewReply(c, models.ReplyData{ID: 9, TopicID: "CP_7"}, user)

		assert.Equal(t, "内容违规", Message(reply.Send(ctx, "re")))
	})
}
