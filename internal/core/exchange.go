package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"go.uber.org/zap"

	"github.com/bkgoodman/superpwdhash/internal/logger"
	"github.com/bkgoodman/superpwdhash/internal/realm"
)

// ImportResult summarizes an import
type ImportResult struct {
	Added   []string // Realms new to the registry
	Skipped int      // Entries that were empty, duplicated or already known
	Diff    string   // Registry listing before -> after, one realm per line
}

// Export returns the registry as a JSON array of realms
func (k *Keeper) Export(ctx context.Context) ([]byte, error) {
	realms, err := k.realms(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(realms)
}

// Import merges a JSON array of hosts or URLs into the registry. With
// dryRun the registry is left untouched and only the result is reported.
func (k *Keeper) Import(ctx context.Context, data []byte, dryRun bool) (*ImportResult, error) {
	var hosts []string
	if err := json.Unmarshal(data, &hosts); err != nil {
		return nil, fmt.Errorf("import must be a JSON array of strings: %w", err)
	}

	before, err := k.realms(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(before)+len(hosts))
	for _, r := range before {
		known[r] = true
	}

	result := &ImportResult{}
	for _, host := range hosts {
		r := realm.Normalize(host)
		if r == "" || known[r] {
			result.Skipped++
			continue
		}
		known[r] = true
		result.Added = append(result.Added, r)
	}

	after := append(append([]string(nil), before...), result.Added...)
	sort.Strings(after)
	result.Diff = listingDiff(before, after)

	logger.Debug(ctx, "import",
		zap.Int("entries", len(hosts)),
		zap.Int("new", len(result.Added)),
		zap.Bool("dryRun", dryRun),
	)

	if dryRun || len(result.Added) == 0 {
		return result, nil
	}

	if _, err := k.AddSites(ctx, result.Added); err != nil {
		return nil, err
	}
	logger.Info(ctx, "imported sites",
		zap.Int("added", len(result.Added)),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (k *Keeper) realms(ctx context.Context) ([]string, error) {
	sites, err := k.Sites(ctx)
	if err != nil {
		return nil, err
	}
	realms := make([]string, 0, len(sites))
	for _, s := range sites {
		realms = append(realms, s.Realm)
	}
	return realms, nil
}

// listingDiff renders a line diff of two realm listings with "+ ", "- "
// and "  " prefixes
func listingDiff(before, after []string) string {
	dmp := diffmatchpatch.New()

	a, b, lineArray := dmp.DiffLinesToChars(joinLines(before), joinLines(after))
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var out strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix)
			out.WriteString(line)
		}
	}
	return out.String()
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
