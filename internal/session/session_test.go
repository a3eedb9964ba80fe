package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestOpen_MissingFileIsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "token.toml"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if s.Token() != "" {
		t.Fatalf("Token = %q, want empty", s.Token())
	}
}

func TestSave_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.toml")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := s.Save("  abc123  "); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if s.Token() != "abc123" {
		t.Fatalf("Token = %q, want abc123", s.Token())
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if reopened.Token() != "abc123" {
		t.Fatalf("reopened Token = %q, want abc123", reopened.Token())
	}
}

func TestClear_RemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.toml")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := s.Save("abc"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if s.Token() != "" {
		t.Fatalf("Token = %q, want empty", s.Token())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("token file still present: %v", err)
	}
	// Clearing twice is fine.
	if err := s.Clear(); err != nil {
		t.Fatalf("second Clear returned error: %v", err)
	}
}

func TestSave_EmptyClears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.toml")
	s, _ := Open(path)
	_ = s.Save("abc")
	if err := s.Save("   "); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if s.Token() != "" {
		t.Fatalf("Token = %q, want empty", s.Token())
	}
}

func TestOpen_InvalidTOMLIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.toml")
	if err := os.WriteFile(path, []byte("not valid toml {{{\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if s.Token() != "" {
		t.Fatalf("Token = %q, want empty", s.Token())
	}
}

func TestOpen_DefaultPathUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	s, err := Open("")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	want := filepath.Join(home, ".local/state/sixcities/token.toml")
	if s.Path() != want {
		t.Fatalf("Path = %q, want %q", s.Path(), want)
	}
}

func TestMemoryStore(t *testing.T) {
	var m MemoryStore
	_ = m.Save("t1")
	if m.Token() != "t1" {
		t.Fatalf("Token = %q, want t1", m.Token())
	}
	_ = m.Clear()
	if m.Token() != "" {
		t.Fatalf("Token = %q, want empty", m.Token())
	}
}

func TestExpired(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	sign := func(exp time.Time) string {
		claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
		if err != nil {
			t.Fatalf("SignedString: %v", err)
		}
		return s
	}
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u"}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"opaque", "dGVzdEB0ZXN0LnJ1", false},
		{"empty", "", false},
		{"malformed jwt", "a.b.c", false},
		{"no exp claim", noExp, false},
		{"future exp", sign(now.Add(time.Hour)), false},
		{"past exp", sign(now.Add(-time.Minute)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Expired(tt.token, now); got != tt.want {
				t.Fatalf("Expired = %v, want %v", got, tt.want)
			}
		})
	}
}
