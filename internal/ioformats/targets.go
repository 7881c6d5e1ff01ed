
package ioformats

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// targetColumns name the field holding a page URL, in preference order.
var targetColumns = []string{"url", "target", "wm-target"}

// ReadTargets reads the page URLs for a batch webmention query. The file
// is CSV with a url, target or wm-target column, NDJSON objects keyed the
// same way, or plain text with one URL per line. Blank lines, "#" comments
// and repeated URLs are dropped; order is kept.
func ReadTargets(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var targets []string
	if strings.EqualFold(filepath.Ext(path), ".csv") || csvHeader(data) {
		targets, err = targetsFromCSV(bytes.NewReader(data))
	} else {
		targets, err = targetsFromLines(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%s: no target urls", path)
	}

	seen := make(map[string]bool, len(targets))
	out := targets[:0]
	for _, t := range targets {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out, nil
}

func csvHeader(data []byte) bool {
	line, _, _ := bytes.Cut(bytes.TrimSpace(data), []byte("\n"))
	if !bytes.Contains(line, []byte(",")) {
		return false
	}
	for _, f := range strings.Split(string(line), ",") {
		if slices.Contains(targetColumns, strings.ToLower(strings.TrimSpace(f))) {
			return true
		}
	}
	return false
}

func targetsFromCSV(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	col := -1
	for _, name := range targetColumns {
		col = slices.IndexFunc(header, func(h string) bool {
			return strings.EqualFold(strings.TrimSpace(h), name)
		})
		if col >= 0 {
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("csv header needs one of %s", strings.Join(targetColumns, ", "))
	}

	var out []string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if col < len(row) {
			if u := strings.TrimSpace(row[col]); u != "" {
				out = append(out, u)
			}
		}
	}
}

type targetRecord struct {
	URL      string `json:"url"`
	Target   string `json:"target"`
	WMTarget string `json:"wm-target"`
}

func targetsFromLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "{") {
			out = append(out, line)
			continue
		}
		var rec targetRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		for _, u := range []string{rec.URL, rec.Target, rec.WMTarget} {
			if u != "" {
				out = append(out, u)
				break
			}
		}
	}
	return out, sc.Err()
}

// WriteNDJSON writes one JSON document per item.
func WriteNDJSON[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return err
		}
	}
	return nil
}
