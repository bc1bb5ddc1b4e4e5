package testing

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Route keys reported by [FakeServer.Hits].
const (
	RouteCaptcha  = "captcha"
	RoutePassword = "password"
	RouteToken    = "token"
	RouteInfo     = "info"
	RouteWork     = "work"
	RouteVote     = "vote"
	RouteSubmit   = "submit"
	RouteComments = "comments"
)

// FakeServer impersonates the passport, login and code hosts on one listener.
//
// Responses are plain values set before the test drives the client. Listing pages are
// keyed by parent id ("0" for top-level comments); page n is Pages[parent][n-1], and
// pages past the end are empty.
type FakeServer struct {
	*httptest.Server

	Captcha      any
	Password     any
	TokenCookies []*http.Cookie
	TokenStatus  int
	Info         any
	Works        map[string]any
	Vote         any
	Submit       any
	Pages        map[string][]any
	FailPage     map[string]int

	mu      sync.Mutex
	hits    map[string]int
	forms   map[string]url.Values
	bodies  map[string][]byte
	cookies map[string]map[string]string
	headers map[string]http.Header
	queries map[string]url.Values
}

// NewFakeServer starts a fake server that is closed when t finishes.
//
// All endpoints answer with a success envelope until configured otherwise.
func NewFakeServer(t *testing.T) *FakeServer {
	t.Helper()

	f := &FakeServer{
		Captcha:  PassportOK(map[string]string{"captcha": "data:image/jpeg;base64,QUJD"}),
		Password: PassportOK(map[string]string{"code": "X", "passport_token": "pt"}),
		TokenCookies: []*http.Cookie{
			{Name: "tal_token", Value: "tal-value", Path: "/"},
			{Name: "xes_rfh", Value: "rfh-value", Path: "/"},
		},
		Info:     CodeOK(map[string]any{"id": "42", "nickname": "tester", "realname": "Test"}),
		Works:    map[string]any{},
		Vote:     CodeOK(nil),
		Submit:   CodeOK(nil),
		Pages:    map[string][]any{},
		FailPage: map[string]int{},
		hits:     map[string]int{},
		forms:    map[string]url.Values{},
		bodies:   map[string][]byte{},
		cookies:  map[string]map[string]string{},
		headers:  map[string]http.Header{},
		queries:  map[string]url.Values{},
	}

	r := chi.NewRouter()
	r.Route("/v1/web", func(r chi.Router) {
		r.Post("/captcha/get", f.handle(RouteCaptcha, func(http.ResponseWriter, *http.Request) any { return f.Captcha }))
		r.Post("/login/pwd", f.handle(RoutePassword, func(http.ResponseWriter, *http.Request) any { return f.Password }))
	})
	r.Post("/V1/Web/getToken", f.handle(RouteToken, f.token))
	r.Route("/api", func(r chi.Router) {
		r.Get("/user/info", f.handle(RouteInfo, func(http.ResponseWriter, *http.Request) any { return f.Info }))
		r.Get("/compilers/v2/{id}", f.handle(RouteWork, f.work))
		r.Post("/compilers/{id}/{action}", f.handle(RouteVote, func(http.ResponseWriter, *http.Request) any { return f.Vote }))
		r.Post("/comments/submit", f.handle(RouteSubmit, func(http.ResponseWriter, *http.Request) any { return f.Submit }))
		r.Get("/comments", f.handle(RouteComments, f.comments))
	})

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Close)
	return f
}

// handle records the request under route and writes the value respond returns as JSON.
// A nil value means respond already wrote the response.
func (f *FakeServer) handle(route string, respond func(http.ResponseWriter, *http.Request) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		f.mu.Lock()
		f.hits[route]++
		f.bodies[route] = body
		f.headers[route] = r.Header.Clone()
		f.queries[route] = r.URL.Query()
		if form, err := url.ParseQuery(string(body)); err == nil {
			f.forms[route] = form
		}
		jar := map[string]string{}
		for _, c := range r.Cookies() {
			jar[c.Name] = c.Value
		}
		f.cookies[route] = jar
		f.mu.Unlock()

		v := respond(w, r)
		if v == nil {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}
}

func (f *FakeServer) token(w http.ResponseWriter, r *http.Request) any {
	for _, c := range f.TokenCookies {
		http.SetCookie(w, c)
	}
	status := f.TokenStatus
	if status == 0 {
		status = http.StatusFound
	}
	w.Header().Set("Location", "/")
	w.WriteHeader(status)
	return nil
}

func (f *FakeServer) work(w http.ResponseWriter, r *http.Request) any {
	if v, ok := f.Works[chi.URLParam(r, "id")]; ok {
		return v
	}
	return CodeErr("作品不存在")
}

func (f *FakeServer) comments(w http.ResponseWriter, r *http.Request) any {
	parent := r.URL.Query().Get("parent_id")
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return CodeErr("bad page")
	}
	if fail, ok := f.FailPage[parent]; ok && fail == page {
		return CodeErr("服务器错误")
	}

	items := []any{}
	if pages := f.Pages[parent]; page <= len(pages) {
		items = pages[page-1].([]any)
	}
	return CodeOK(map[string]any{
		"data":     items,
		"page":     page,
		"per_page": r.URL.Query().Get("per_page"),
	})
}

// Hits returns how many requests reached route.
func (f *FakeServer) Hits(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[route]
}

// TotalHits returns the number of requests across all routes.
func (f *FakeServer) TotalHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.hits {
		n += v
	}
	return n
}

// Form returns the last url-encoded body posted to route.
func (f *FakeServer) Form(route string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forms[route]
}

// Body returns the last raw body sent to route.
func (f *FakeServer) Body(route string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[route]
}

// Cookies returns the cookies of the last request to route.
func (f *FakeServer) Cookies(route string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cookies[route]
}

// Header returns the headers of the last request to route.
func (f *FakeServer) Header(route string) http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.headers[route]
}

// Query returns the query parameters of the last request to route.
func (f *FakeServer) Query(route string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[route]
}

// SetPages registers the listing pages for parent.
func (f *FakeServer) SetPages(parent string, pages ...[]any) {
	f.Pages[parent] = make([]any, len(pages))
	for i, p := range pages {
		f.Pages[parent][i] = p
	}
}

// PassportOK wraps data in a successful passport envelope.
func PassportOK(data any) map[string]any {
	return map[string]any{"errcode": 0, "errmsg": "", "data": data}
}

// PassportErr builds a rejected passport envelope.
func PassportErr(code int, msg string) map[string]any {
	return map[string]any{"errcode": code, "errmsg": msg, "data": nil}
}

// CodeOK wraps data in a successful code-site envelope.
func CodeOK(data any) map[string]any {
	return map[string]any{"stat": 1, "status": 200, "msg": "", "message": "", "data": data}
}

// CodeErr builds a rejected code-site envelope.
func CodeErr(msg string) map[string]any {
	return map[string]any{"stat": 0, "status": 400, "msg": msg, "message": "", "data": nil}
}

// Items builds n listing records with consecutive ids starting at first.
func Items(first, n int, topicID string) []any {
	items := make([]any, n)
	for i := range n {
		items[i] = map[string]any{
			"id":       first + i,
			"topic_id": topicID,
			"content":  "item " + strconv.Itoa(first+i),
			"username": "user" + strconv.Itoa(first+i),
		}
	}
	return items
}
