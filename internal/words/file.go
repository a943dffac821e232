package words

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadFile reads one word per line. Blank lines and lines starting with #
// are skipped.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word file %s: %w", path, err)
	}
	defer f.Close()

	words, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read word file %s: %w", path, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word file %s: %w", path, ErrEmpty)
	}
	return words, nil
}

func Parse(r io.Reader) ([]string, error) {
	var words []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		w := strings.TrimSpace(scanner.Text())
		if w == "" || strings.HasPrefix(w, "#") || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}
