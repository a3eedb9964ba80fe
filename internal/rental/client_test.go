package rental

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type memTokens struct {
	mu      sync.Mutex
	token   string
	cleared int
}

func (m *memTokens) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *memTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.cleared++
	return nil
}

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != DefaultBaseURL {
		t.Fatalf("url = %q, want %q", u.String(), DefaultBaseURL)
	}

	u, err = parseBaseURL("http://example.com:1234/six-cities/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "/six-cities" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	u, err = parseBaseURL("api.example.com")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "https" || u.Host != "api.example.com" {
		t.Fatalf("url = %q, want https://api.example.com", u.String())
	}
}

func TestClient_FetchesEndpointsUnderBasePath(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	seen := map[string]string{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.Method+" "+r.URL.Path] = r.Header.Get(TokenHeader)
		mu.Unlock()
		if r.Header.Get(requestIDHeader) == "" {
			t.Errorf("missing %s on %s", requestIDHeader, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")

		switch r.Method + " " + r.URL.Path {
		case "GET /six-cities/offers":
			_ = json.NewEncoder(w).Encode([]Offer{{ID: "1", City: City{Name: "Paris"}}})
		case "GET /six-cities/offers/1":
			_ = json.NewEncoder(w).Encode(OfferDetails{ID: "1", Images: []string{"a.jpg"}})
		case "GET /six-cities/offers/1/nearby":
			_ = json.NewEncoder(w).Encode([]Offer{{ID: "2"}, {ID: "3"}})
		case "GET /six-cities/comments/1":
			_ = json.NewEncoder(w).Encode([]Feedback{{ID: "c1", Rating: 4}})
		case "POST /six-cities/comments/1":
			var in CommentInput
			_ = json.NewDecoder(r.Body).Decode(&in)
			_ = json.NewEncoder(w).Encode(Feedback{ID: "c2", Comment: in.Comment, Rating: in.Rating})
		case "GET /six-cities/favorite":
			_ = json.NewEncoder(w).Encode([]Offer{{ID: "1", IsFavorite: true}})
		case "POST /six-cities/favorite/1/1":
			_ = json.NewEncoder(w).Encode(OfferDetails{ID: "1", IsFavorite: true})
		case "POST /six-cities/favorite/1/0":
			_ = json.NewEncoder(w).Encode(OfferDetails{ID: "1", IsFavorite: false})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	tokens := &memTokens{token: "secret"}
	c, err := NewClient(server.URL+"/six-cities", WithTokenSource(tokens))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	offers, err := c.FetchOffers(ctx)
	if err != nil || len(offers) != 1 || offers[0].City.Name != "Paris" {
		t.Fatalf("FetchOffers = %#v, %v", offers, err)
	}
	details, err := c.FetchOffer(ctx, "1")
	if err != nil || details.ID != "1" || details.Summary().PreviewImage != "a.jpg" {
		t.Fatalf("FetchOffer = %#v, %v", details, err)
	}
	nearby, err := c.FetchNearby(ctx, "1")
	if err != nil || len(nearby) != 2 {
		t.Fatalf("FetchNearby = %#v, %v", nearby, err)
	}
	comments, err := c.FetchComments(ctx, "1")
	if err != nil || len(comments) != 1 || comments[0].Rating != 4 {
		t.Fatalf("FetchComments = %#v, %v", comments, err)
	}
	posted, err := c.PostComment(ctx, "1", CommentInput{Comment: "nice", Rating: 5})
	if err != nil || posted.Comment != "nice" || posted.Rating != 5 {
		t.Fatalf("PostComment = %#v, %v", posted, err)
	}
	favs, err := c.FetchFavorites(ctx)
	if err != nil || len(favs) != 1 {
		t.Fatalf("FetchFavorites = %#v, %v", favs, err)
	}
	on, err := c.SetFavorite(ctx, "1", true)
	if err != nil || !on.IsFavorite {
		t.Fatalf("SetFavorite(true) = %#v, %v", on, err)
	}
	off, err := c.SetFavorite(ctx, "1", false)
	if err != nil || off.IsFavorite {
		t.Fatalf("SetFavorite(false) = %#v, %v", off, err)
	}

	mu.Lock()
	defer mu.Unlock()
	for route, token := range seen {
		if token != "secret" {
			t.Fatalf("%s sent %s=%q, want secret", route, TokenHeader, token)
		}
	}
}

func TestClient_OmitsTokenHeaderWhenEmpty(t *testing.T) {
	t.Parallel()

	var got []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Values(TokenHeader)
		_, _ = w.Write([]byte("[]"))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, WithTokenSource(&memTokens{}))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.FetchOffers(context.Background()); err != nil {
		t.Fatalf("FetchOffers returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("%s = %v, want no header", TokenHeader, got)
	}
}

func TestClient_UnauthorizedClearsToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errorType":"COMMON_ERROR","message":"Access denied."}`))
	}))
	t.Cleanup(server.Close)

	tokens := &memTokens{token: "stale"}
	c, err := NewClient(server.URL, WithTokenSource(tokens))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.CheckSession(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("CheckSession error = %v, want ErrUnauthorized", err)
	}
	if tokens.Token() != "" || tokens.cleared != 1 {
		t.Fatalf("token = %q cleared = %d, want empty and cleared once", tokens.Token(), tokens.cleared)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Body.Message != "Access denied." {
		t.Fatalf("error body = %#v, want Access denied.", apiErr)
	}
}

func TestClient_LoginValidationError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var creds Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email == "ok@example.com" {
			_ = json.NewEncoder(w).Encode(UserAuth{Email: creds.Email, Token: "t"})
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errorType":"VALIDATION_ERROR","message":"Validation error: '/six-cities/login'","details":[{"property":"password","value":"x","messages":["password must contain a letter and a digit"]}]}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	user, err := c.Login(context.Background(), Credentials{Email: "ok@example.com", Password: "a1"})
	if err != nil || user.Token != "t" {
		t.Fatalf("Login = %#v, %v", user, err)
	}

	_, err = c.Login(context.Background(), Credentials{Email: "bad@example.com", Password: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Login error = %v, want *APIError", err)
	}
	msg, ok := apiErr.FirstValidationMessage()
	if !ok || msg != "password must contain a letter and a digit" {
		t.Fatalf("FirstValidationMessage = %q, %v", msg, ok)
	}
}

func TestClient_LogoutRequires204(t *testing.T) {
	t.Parallel()

	var status atomic.Int32
	status.Store(http.StatusNoContent)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/logout" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(int(status.Load()))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	status.Store(http.StatusOK)
	if err := c.Logout(context.Background()); err == nil || !strings.Contains(err.Error(), "want 204") {
		t.Fatalf("Logout error = %v, want status mismatch", err)
	}
}

func TestClient_HTTPErrorAndDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/offers":
			_, _ = w.Write([]byte("{not-json"))
		case "/favorite":
			http.Error(w, "nope", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchOffers(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchOffers error = %v, want decode response error", err)
	}

	_, err = c.FetchFavorites(context.Background())
	if err == nil || !strings.Contains(err.Error(), "returned status 500") {
		t.Fatalf("FetchFavorites error = %v, want status 500 error", err)
	}
}

func TestClient_RequiresOfferID(t *testing.T) {
	c, err := NewClient("127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.FetchOffer(context.Background(), " "); err == nil {
		t.Fatalf("FetchOffer returned nil error, want error")
	}
	if _, err := c.SetFavorite(context.Background(), "", true); err == nil {
		t.Fatalf("SetFavorite returned nil error, want error")
	}
}

func TestCommentInputValid(t *testing.T) {
	long := strings.Repeat("a", CommentMinLength)
	tests := []struct {
		name  string
		input CommentInput
		want  bool
	}{
		{"minimum", CommentInput{Comment: long, Rating: 1}, true},
		{"maximum", CommentInput{Comment: strings.Repeat("é", CommentMaxLength), Rating: 5}, true},
		{"too short", CommentInput{Comment: long[1:], Rating: 3}, false},
		{"too long", CommentInput{Comment: strings.Repeat("a", CommentMaxLength+1), Rating: 3}, false},
		{"rating zero", CommentInput{Comment: long, Rating: 0}, false},
		{"rating six", CommentInput{Comment: long, Rating: 6}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.Valid(); got != tt.want {
				t.Fatalf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}
