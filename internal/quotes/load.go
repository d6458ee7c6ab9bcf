package quotes

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source is one input file and the records it produced.
type Source struct {
	Path    string
	Stem    string
	Kind    string
	Records []Record
	// IDs holds a stable identifier per record, parallel to Records.
	IDs []string
}

// LoadResult mirrors a directory scan: usable sources plus per-file problems
// that did not stop the scan.
type LoadResult struct {
	Sources []*Source
	Errors  []string
}

const (
	KindCSV      = "csv"
	KindMarkdown = "markdown"
)

// KindOf classifies a file name by extension, returning "" for other files.
func KindOf(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return KindCSV
	case ".md":
		return KindMarkdown
	default:
		return ""
	}
}

// Load reads every quote file directly inside dir in name order.
func Load(dir string) (*LoadResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || KindOf(entry.Name()) == "" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	result := &LoadResult{}
	stems := map[string]string{}
	for _, name := range names {
		src, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		// Output names derive from the stem, so a second file with the same
		// stem would overwrite the first one's images.
		if first, ok := stems[src.Stem]; ok {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: stem %q already used by %s", name, src.Stem, first))
			continue
		}
		stems[src.Stem] = name
		result.Sources = append(result.Sources, src)
	}
	return result, nil
}

// LoadFile reads a single .csv or .md quote file.
func LoadFile(path string) (*Source, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(path)
	src := &Source{
		Path: path,
		Stem: strings.TrimSuffix(base, filepath.Ext(base)),
		Kind: KindOf(base),
	}

	switch src.Kind {
	case KindCSV:
		src.Records = Parse(string(raw))
		for i := range src.Records {
			src.IDs = append(src.IDs, fmt.Sprintf("%s-%03d", src.Stem, i+1))
		}
	case KindMarkdown:
		rec, id, err := ParseMarkdown(string(raw), src.Stem)
		if err != nil {
			return nil, err
		}
		if rec.Text != "" {
			src.Records = []Record{rec}
			src.IDs = []string{id}
		}
	default:
		return nil, fmt.Errorf("unsupported quote file %q", base)
	}
	return src, nil
}
