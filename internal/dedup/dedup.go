// Package dedup groups classified items that cover the same story across
// sources and selects a representative per group.
package dedup

import (
	"sort"
	"unicode/utf8"

	"github.com/adrg/strutil"
	"go.uber.org/zap"

	"github.com/sells-group/newswatch/internal/model"
)

// StoryGroup is a cluster of items believed to describe the same story.
// Members keep processing order; Primary is always one of the members.
type StoryGroup struct {
	Members []model.ClassifiedItem
	Primary model.ClassifiedItem
}

// Deduplicator partitions batches of classified items into story groups
// using title similarity. It performs no I/O.
type Deduplicator struct {
	threshold float64
	metric    strutil.StringMetric
}

// New creates a Deduplicator with the given similarity threshold in (0,1].
func New(threshold float64) *Deduplicator {
	return &Deduplicator{
		threshold: threshold,
		metric:    ratcliffObershelp{},
	}
}

// Group partitions items into story groups. Every input item lands in
// exactly one group. Grouping is single-link against each group's seed:
// items are processed in ascending published_at order (ties broken by
// batch position) and join the first existing group whose seed title is
// similar at or above the threshold.
func (d *Deduplicator) Group(items []model.ClassifiedItem) []StoryGroup {
	if len(items) == 0 {
		return nil
	}

	ordered := make([]model.ClassifiedItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Item.PublishedAt.Before(ordered[j].Item.PublishedAt)
	})

	grouped := make([]bool, len(ordered))
	var groups []StoryGroup

	for i := range ordered {
		if grouped[i] {
			continue
		}
		grouped[i] = true
		members := []model.ClassifiedItem{ordered[i]}

		for j := i + 1; j < len(ordered); j++ {
			if grouped[j] {
				continue
			}
			score := titleSimilarity(d.metric, ordered[i].Item.Title, ordered[j].Item.Title)
			if score >= d.threshold {
				grouped[j] = true
				members = append(members, ordered[j])
			}
		}

		groups = append(groups, StoryGroup{
			Members: members,
			Primary: selectPrimary(members),
		})
	}

	zap.L().Debug("dedup: grouped batch",
		zap.Int("items", len(items)),
		zap.Int("groups", len(groups)),
	)
	return groups
}

// Deduplicate groups items and builds one UnifiedItem per group.
func (d *Deduplicator) Deduplicate(items []model.ClassifiedItem) []model.UnifiedItem {
	groups := d.Group(items)
	unified := make([]model.UnifiedItem, 0, len(groups))
	for _, g := range groups {
		unified = append(unified, g.Unified())
	}
	return unified
}

// Unified builds the emitted record for this group. Headline, summary,
// date and verdict come from the primary; sources list every member,
// de-duplicated by (source, url) in first-appearance order.
func (g StoryGroup) Unified() model.UnifiedItem {
	seen := make(map[model.SourceRef]bool, len(g.Members))
	sources := make([]model.SourceRef, 0, len(g.Members))
	for _, m := range g.Members {
		ref := model.SourceRef{SourceName: m.Item.SourceName, URL: m.Item.URL}
		if seen[ref] {
			continue
		}
		seen[ref] = true
		sources = append(sources, ref)
	}

	return model.UnifiedItem{
		Headline:    g.Primary.Item.Title,
		Summary:     g.Primary.Item.Snippet,
		Date:        g.Primary.Item.PublishedAt,
		Category:    g.Primary.Result.Category,
		SubCategory: g.Primary.Result.SubCategory,
		Sources:     sources,
	}
}

// selectPrimary picks the best representative: longest snippet, then
// earliest published_at, then first occurrence in processing order.
func selectPrimary(members []model.ClassifiedItem) model.ClassifiedItem {
	best := members[0]
	bestLen := utf8.RuneCountInString(best.Item.Snippet)
	for _, m := range members[1:] {
		l := utf8.RuneCountInString(m.Item.Snippet)
		switch {
		case l > bestLen:
			best, bestLen = m, l
		case l == bestLen && m.Item.PublishedAt.Before(best.Item.PublishedAt):
			best = m
		}
	}
	return best
}
