package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadRecords reads every extraction-record JSON file in dir, skipping
// non-JSON entries and files whose name starts with "_" (corpus-level
// artifacts written next to per-document output by the extraction stage).
// A record without an explicit identifier falls back to the file stem. A
// directory with no usable records is a fatal condition for the caller.
func LoadRecords(dir string) ([]ExtractionRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read extract dir: %w", err)
	}

	var records []ExtractionRecord
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var rec ExtractionRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if rec.ID() == "" {
			rec.DocID = strings.TrimSuffix(name, ".json")
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID() < records[j].ID() })
	return records, nil
}
