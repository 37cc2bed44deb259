package main

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"strings"
)

// parseFrequency maps each term to its frequency rank (lower = more
// common), keeping the best rank when a term appears more than once.
// Frequency banks are term_meta_bank_*.json files with entries of the
// form [term, "freq", data].
func parseFrequency(path string) (map[string]int, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	freq := make(map[string]int)
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "term_meta_bank_") || !strings.HasSuffix(f.Name, ".json") {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", f.Name, err)
		}

		var bank []json.RawMessage
		err = json.NewDecoder(rc).Decode(&bank)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", f.Name, err)
		}

		for _, raw := range bank {
			term, rank, ok := parseFrequencyEntry(raw)
			if !ok {
				continue
			}
			if existing, seen := freq[term]; !seen || rank < existing {
				freq[term] = rank
			}
		}
	}
	return freq, nil
}

func parseFrequencyEntry(raw json.RawMessage) (string, int, bool) {
	var arr []any
	if err := json.Unmarshal(raw, &arr); err != nil || len(arr) < 3 {
		return "", 0, false
	}

	term, ok := arr[0].(string)
	if !ok {
		return "", 0, false
	}
	if kind, _ := arr[1].(string); kind != "freq" {
		return "", 0, false
	}

	rank, ok := frequencyValue(arr[2])
	return term, rank, ok
}

// frequencyValue digs the numeric rank out of the several shapes
// dictionaries use: a bare number, {"value": n}, {"frequency": n}, or
// {"frequency": {"value": n}}.
func frequencyValue(v any) (int, bool) {
	switch v := v.(type) {
	case float64:
		return int(v), true
	case map[string]any:
		for _, field := range []string{"value", "frequency", "rank"} {
			if n, ok := v[field].(float64); ok {
				return int(n), true
			}
		}
		if nested, ok := v["frequency"].(map[string]any); ok {
			if n, ok := nested["value"].(float64); ok {
				return int(n), true
			}
		}
	}
	return 0, false
}
