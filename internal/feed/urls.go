package feed

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LoadURLs reads the feed list file. A missing file is not an error: it
// yields no URLs and a warning.
func LoadURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("feed list not found", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("open feed list: %w", err)
	}
	defer func() { _ = f.Close() }()

	urls, err := ReadURLs(f)
	if err != nil {
		return nil, fmt.Errorf("read feed list %s: %w", path, err)
	}
	return urls, nil
}

// ReadURLs parses one URL per line. Blank lines, lines starting with '#' and
// lines that are not http(s) URLs are skipped.
func ReadURLs(r io.Reader) ([]string, error) {
	var urls []string
	sc := bufio.NewScanner(r)
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "http://") && !strings.HasPrefix(line, "https://") {
			slog.Debug("feed list line skipped", "line", line)
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return urls, nil
}
