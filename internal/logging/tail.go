package logging

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Tail returns at most maxLines from the end of the file at path. A missing
// file yields no lines.
func Tail(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := range count {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one decoded JSON log record.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
	Attrs   map[string]string
}

// ParseEntry decodes a record written by the JSON handler. Lines that are not
// JSON come back as an info entry holding the raw text.
func ParseEntry(line string) Entry {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{Level: "INFO", Message: strings.TrimSpace(line)}
	}

	entry := Entry{Attrs: map[string]string{}}
	for key, value := range raw {
		switch key {
		case "time":
			if s, ok := value.(string); ok {
				entry.Time, _ = time.Parse(time.RFC3339Nano, s)
			}
		case "level":
			entry.Level, _ = value.(string)
		case "msg":
			entry.Message, _ = value.(string)
		default:
			entry.Attrs[key] = fmt.Sprint(value)
		}
	}
	return entry
}

// AttrString renders attributes as sorted key=value pairs, skipping keys in omit.
func (e Entry) AttrString(omit ...string) string {
	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		if !contains(omit, k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+e.Attrs[k])
	}
	return strings.Join(parts, " ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
