package main

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"strings"
)

// termEntry is one parsed term from a Yomitan term bank.
type termEntry struct {
	Term    string
	Reading string
	// UsuallyKana marks words carrying the JMdict "uk" tag, which are
	// usually written without kanji.
	UsuallyKana bool
}

// parseDictionary extracts term entries from a Yomitan dictionary ZIP.
// Term banks are term_bank_*.json files, each an array of entries of the
// form [term, reading, tags, rules, score, definitions, seq, term_tags].
func parseDictionary(path string) ([]termEntry, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var entries []termEntry
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "term_bank_") || !strings.HasSuffix(f.Name, ".json") {
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
			if e, ok := parseTermEntry(raw); ok {
				entries = append(entries, e)
			}
		}
	}
	return entries, nil
}

func parseTermEntry(raw json.RawMessage) (termEntry, bool) {
	var arr []any
	if err := json.Unmarshal(raw, &arr); err != nil || len(arr) < 6 {
		return termEntry{}, false
	}

	term, ok := arr[0].(string)
	if !ok {
		return termEntry{}, false
	}
	reading, ok := arr[1].(string)
	if !ok {
		return termEntry{}, false
	}
	tags, _ := arr[2].(string)

	uk := hasUKTag(tags) || hasUKInContent(arr[5])
	return termEntry{Term: term, Reading: reading, UsuallyKana: uk}, true
}

func hasUKTag(tags string) bool {
	for _, t := range strings.Fields(tags) {
		if t == "uk" {
			return true
		}
	}
	return false
}

// hasUKInContent looks for the "uk" tag inside structured content, where
// Jitendex-style dictionaries store it as {"code": "uk"}.
func hasUKInContent(v any) bool {
	switch v := v.(type) {
	case string:
		return strings.Contains(v, `"code":"uk"`) || strings.Contains(v, `"code": "uk"`)
	case []any:
		for _, item := range v {
			if hasUKInContent(item) {
				return true
			}
		}
	case map[string]any:
		if code, ok := v["code"].(string); ok && code == "uk" {
			return true
		}
		for _, item := range v {
			if hasUKInContent(item) {
				return true
			}
		}
	}
	return false
}
