package logging

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry is one log line parsed back from a JSON log file.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
	// Attrs holds any additional attributes the line carried.
	Attrs map[string]any
}

// ReadEntries returns up to count entries from the most recently modified
// log file in dir, oldest first. An empty level keeps every entry;
// otherwise only entries at that level (case-insensitive) are returned.
// Lines that are not valid JSON are skipped.
func ReadEntries(dir string, count int, level string) ([]Entry, error) {
	latest, err := latestLogFile(dir)
	if err != nil {
		return nil, err
	}
	if latest == "" {
		return nil, nil
	}

	f, err := os.Open(latest)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		entry, ok := parseLine(scanner.Bytes())
		if !ok {
			continue
		}
		if level != "" && !strings.EqualFold(entry.Level, level) {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	if count > 0 && len(entries) > count {
		entries = entries[len(entries)-count:]
	}
	return entries, nil
}

func latestLogFile(dir string) (string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read log dir: %w", err)
	}

	var latest string
	var latestMod time.Time
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".log") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = filepath.Join(dir, de.Name())
			latestMod = info.ModTime()
		}
	}
	return latest, nil
}

func parseLine(line []byte) (Entry, bool) {
	var raw map[string]any
	if err := json.Unmarshal(line, &raw); err != nil {
		return Entry{}, false
	}

	var entry Entry
	if s, ok := raw["time"].(string); ok {
		entry.Time, _ = time.Parse(time.RFC3339Nano, s)
	}
	entry.Level, _ = raw["level"].(string)
	entry.Message, _ = raw["msg"].(string)

	delete(raw, "time")
	delete(raw, "level")
	delete(raw, "msg")
	if len(raw) > 0 {
		entry.Attrs = raw
	}
	return entry, true
}
