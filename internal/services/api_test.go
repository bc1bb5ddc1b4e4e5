package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	tu "github.com/desertthunder/xes/internal/testing"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com/", customClient)

			if srv.baseURL != "http://example.com" {
				t.Errorf("expected trailing slash trimmed, got %s", srv.baseURL)
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewAPIService("", nil)

			if srv.baseURL != "https://code.xueersi.com" {
				t.Errorf("expected default baseURL 'https://code.xueersi.com', got %s", srv.baseURL)
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})

		t.Run("URL", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)

			if got := srv.URL("api/user/info"); got != "http://example.com/api/user/info" {
				t.Errorf("unexpected URL %s", got)
			}
			if got := srv.URL("/api/user/info"); got != "http://example.com/api/user/info" {
				t.Errorf("unexpected URL %s", got)
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("Successful Request With JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/test" {
					t.Errorf("expected path '/test', got %s", r.URL.Path)
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]any{"stat": 1})
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Get(context.Background(), "/test")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() {
				t.Errorf("expected status 200, got %d", resp.StatusCode)
			}
			if !resp.IsJSON {
				t.Error("expected response to be JSON")
			}
			if resp.JSONData == nil {
				t.Error("expected JSONData to be populated")
			}
		})

		t.Run("Successful Request With Non-JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("<html></html>"))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Get(context.Background(), "/test")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("expected response to not be JSON")
			}
			if string(resp.Body) != "<html></html>" {
				t.Errorf("unexpected body %s", string(resp.Body))
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)
			_, err := srv.Get(context.Background(), "/test\x00invalid")

			if err == nil || !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			srv := NewAPIService("http://example.com", client)
			_, err := srv.Get(context.Background(), "/test")

			if err == nil || !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected 'request failed' error, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			srv := NewAPIService("http://example.com", client)
			_, err := srv.Get(context.Background(), "/test")

			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			srv := NewAPIService(server.URL, nil)
			if _, err := srv.Get(ctx, "/test"); err == nil {
				t.Error("expected error for canceled context")
			}
		})
	})

	t.Run("Post", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST method, got %s", r.Method)
			}
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("expected Content-Type 'application/json', got %s", r.Header.Get("Content-Type"))
			}

			body, _ := io.ReadAll(r.Body)
			var data map[string]string
			if err := json.Unmarshal(body, &data); err != nil {
				t.Errorf("failed to unmarshal request body: %v", err)
			}
			if data["content"] != "hi" {
				t.Errorf("expected content 'hi', got %v", data)
			}

			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"stat":1}`))
		}))
		defer server.Close()

		srv := NewAPIService(server.URL, nil)
		resp, err := srv.Post(context.Background(), "/test", []byte(`{"content":"hi"}`))

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Errorf("expected status 201, got %d", resp.StatusCode)
		}
	})

	t.Run("PostForm", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Content-Type") != "application/x-www-form-urlencoded" {
				t.Errorf("expected form content type, got %s", r.Header.Get("Content-Type"))
			}
			if err := r.ParseForm(); err != nil {
				t.Fatalf("failed to parse form: %v", err)
			}
			if r.PostForm.Get("symbol") != "user" || r.PostForm.Get("scene") != "3" {
				t.Errorf("unexpected form %v", r.PostForm)
			}
			w.Write([]byte(`{"errcode":0}`))
		}))
		defer server.Close()

		srv := NewAPIService(server.URL, nil)
		form := url.Values{"symbol": {"user"}, "scene": {"3"}}
		if _, err := srv.PostForm(context.Background(), "/form", form); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("Request Options", func(t *testing.T) {
		t.Run("Headers and Cookies", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("client-id") != "111101" {
					t.Errorf("expected client-id header, got %q", r.Header.Get("client-id"))
				}
				c, err := r.Cookie("xes_rfh")
				if err != nil || c.Value != "rfh" {
					t.Errorf("expected xes_rfh cookie, got %v (%v)", c, err)
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			_, err := srv.Get(context.Background(), "/",
				WithHeader("client-id", "111101"),
				WithCookies(&http.Cookie{Name: "xes_rfh", Value: "rfh"}),
			)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Without Redirect Keeps Set-Cookie", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/landing" {
					w.WriteHeader(http.StatusOK)
					return
				}
				http.SetCookie(w, &http.Cookie{Name: "tal_token", Value: "tok"})
				http.Redirect(w, r, "/landing", http.StatusFound)
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, server.Client())

			resp, err := srv.PostForm(context.Background(), "/token", url.Values{}, WithoutRedirect())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusFound {
				t.Errorf("expected 302, got %d", resp.StatusCode)
			}
			if v, ok := resp.Cookie("tal_token"); !ok || v != "tok" {
				t.Errorf("expected tal_token cookie, got %q", v)
			}

			followed, err := srv.PostForm(context.Background(), "/token", url.Values{})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if followed.StatusCode != http.StatusOK {
				t.Errorf("expected redirect to be followed by default, got %d", followed.StatusCode)
			}
			if server.Client().CheckRedirect != nil {
				t.Error("expected shared client to be left untouched")
			}
		})
	})

	t.Run("APIResponse", func(t *testing.T) {
		resp := &APIResponse{
			StatusCode: http.StatusNoContent,
			Cookies:    []*http.Cookie{{Name: "a", Value: "1"}},
		}

		if !resp.OK() {
			t.Error("expected 204 to be OK")
		}
		if v, ok := resp.Cookie("a"); !ok || v != "1" {
			t.Errorf("expected cookie a=1, got %q", v)
		}
		if _, ok := resp.Cookie("missing"); ok {
			t.Error("expected missing cookie to be reported")
		}
	})
}
