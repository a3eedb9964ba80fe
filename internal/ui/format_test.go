package ui

import (
	"testing"

	"github.com/five82/sixcities/internal/rental"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"  padded  ", 10, "padded"},
		{"a long title", 8, "a lon..."},
		{"abcdef", 3, "abc"},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestTruncateMiddle(t *testing.T) {
	if got := truncateMiddle("/var/log/sixcities/app.log", 11); got != "/var/…p.log" {
		t.Fatalf("truncateMiddle = %q", got)
	}
	if got := truncateMiddle("short", 10); got != "short" {
		t.Fatalf("truncateMiddle short = %q", got)
	}
}

func TestFormatPrice(t *testing.T) {
	if got := formatPrice(120); got != "€120" {
		t.Fatalf("formatPrice(120) = %q", got)
	}
	if got := formatPrice(99.5); got != "€99.50" {
		t.Fatalf("formatPrice(99.5) = %q", got)
	}
}

func TestRatingStars(t *testing.T) {
	tests := map[float64]string{
		0:   "☆☆☆☆☆",
		3.4: "★★★☆☆",
		4.5: "★★★★★",
		9:   "★★★★★",
		-2:  "☆☆☆☆☆",
	}
	for in, want := range tests {
		if got := ratingStars(in); got != want {
			t.Fatalf("ratingStars(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestPlural(t *testing.T) {
	if got := plural(1, "place"); got != "1 place" {
		t.Fatalf("plural(1) = %q", got)
	}
	if got := plural(0, "place"); got != "0 places" {
		t.Fatalf("plural(0) = %q", got)
	}
}

func TestReviewDate(t *testing.T) {
	if got := reviewDate(rental.Feedback{Date: "2024-03-08T14:13:56.569Z"}); got != "March 2024" {
		t.Fatalf("reviewDate = %q, want March 2024", got)
	}
	if got := reviewDate(rental.Feedback{Date: "yesterday"}); got != "yesterday" {
		t.Fatalf("reviewDate unparsable = %q", got)
	}
}
