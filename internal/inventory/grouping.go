package inventory

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tilestock/tilestock/internal/model"
)

// Variant is one suffix-tagged entry within a display group.
type Variant struct {
	ID        int64     `json:"id"`
	Suffix    string    `json:"suffix"`
	Label     string    `json:"label"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// Group is a display-only aggregation of records sharing a model prefix and
// dimensions. Groups are recomputed from the flat record set on every
// change and are never mutated in place.
type Group struct {
	Key         string    `json:"key"`
	ModelPrefix string    `json:"model_prefix"`
	Width       float64   `json:"width"`
	Height      float64   `json:"height"`
	Variants    []Variant `json:"variants"`
	// CreatedAt is the earliest resolved variant timestamp; zero when no
	// variant has a resolved timestamp yet.
	CreatedAt time.Time `json:"created_at"`
}

// Quantity returns the total quantity across the group's variants.
func (g Group) Quantity() int {
	total := 0
	for _, v := range g.Variants {
		total += v.Quantity
	}
	return total
}

// Dimensions renders the group's size as "WxH" with no trailing zeros.
func (g Group) Dimensions() string {
	return formatDim(g.Width) + "x" + formatDim(g.Height)
}

// Grouper projects a flat record set into ordered display groups. Variant
// ordering within a group uses locale-aware collation of the display
// labels, so the projection is tied to a UI language.
type Grouper struct {
	collator *collate.Collator
	label    func(suffix string) string
}

// NewGrouper creates a grouper for the given language tag and suffix
// display mapping.
func NewGrouper(tag language.Tag, label func(string) string) *Grouper {
	return &Grouper{collator: collate.New(tag), label: label}
}

// Group partitions records into display groups keyed by
// (prefix, width, height), sorts each group's variants by display label,
// and orders groups most-recently-created first. The projection is pure:
// the same record set yields the same groups regardless of input order.
func (gr *Grouper) Group(records []model.Record) []Group {
	buckets := make(map[string]*Group)

	for _, r := range records {
		prefix := model.NormalizePrefix(r.ModelPrefix)
		key := GroupKey(prefix, r.Width, r.Height)

		b, ok := buckets[key]
		if !ok {
			b = &Group{
				Key:         key,
				ModelPrefix: prefix,
				Width:       r.Width,
				Height:      r.Height,
			}
			buckets[key] = b
		}

		b.Variants = append(b.Variants, Variant{
			ID:        r.ID,
			Suffix:    r.TypeSuffix,
			Label:     gr.label(r.TypeSuffix),
			Quantity:  r.Quantity,
			CreatedAt: r.CreatedAt,
		})

		// Unresolved (zero) timestamps never win the minimum.
		if !r.CreatedAt.IsZero() && (b.CreatedAt.IsZero() || r.CreatedAt.Before(b.CreatedAt)) {
			b.CreatedAt = r.CreatedAt
		}
	}

	groups := make([]Group, 0, len(buckets))
	for _, b := range buckets {
		variants := b.Variants
		sort.SliceStable(variants, func(i, j int) bool {
			if c := gr.collator.CompareString(variants[i].Label, variants[j].Label); c != 0 {
				return c < 0
			}
			return variants[i].ID < variants[j].ID
		})
		groups = append(groups, *b)
	}

	// Newest group first; groups with no resolved timestamp sort last.
	// Key tiebreak keeps the order deterministic for equal timestamps.
	sort.Slice(groups, func(i, j int) bool {
		if !groups[i].CreatedAt.Equal(groups[j].CreatedAt) {
			return groups[i].CreatedAt.After(groups[j].CreatedAt)
		}
		return groups[i].Key < groups[j].Key
	})

	return groups
}

// GroupKey builds the composite grouping key for a prefix and dimensions.
// The prefix must already be normalized.
func GroupKey(prefix string, width, height float64) string {
	return fmt.Sprintf("%s_%sx%s", prefix, formatDim(width), formatDim(height))
}

func formatDim(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
