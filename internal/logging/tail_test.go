package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestTail(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "zero", maxLines: 0, expected: nil},
		{name: "negative", maxLines: -1, expected: nil},
		{name: "partial", maxLines: 5, expected: expectedAll[5:]},
		{name: "exactly all", maxLines: 10, expected: expectedAll},
		{name: "more than exists", maxLines: 20, expected: expectedAll},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tail(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Tail returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Tail() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTail_MissingFile(t *testing.T) {
	lines, err := Tail(filepath.Join(t.TempDir(), "missing.log"), 5)
	if err != nil {
		t.Fatalf("expected nil error for missing file, got %v", err)
	}
	if lines != nil {
		t.Fatalf("expected nil lines, got %v", lines)
	}
}
