// Package source answers typeahead fetches from an in-memory record set.
// Lookups go through a prefix trie over lowercased display text; when the
// prefix finds nothing, records are ranked by edit distance instead.
package source

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/go-logr/logr"
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/oakwood-commons/rtex/internal/cel"
	"github.com/oakwood-commons/rtex/pkg/typeahead"
)

// DefaultLimit caps the number of results when a query gives none.
const DefaultLimit = 10

// Options configures an Index.
type Options struct {
	DisplayKey string
	// Where is an optional CEL predicate; records bind to "_".
	Where string
	// Fuzzy enables the edit-distance fallback.
	Fuzzy bool
	// MaxDistance bounds fuzzy matches. Zero scales with the query length.
	MaxDistance int
}

// Index is an immutable, read-only search structure. It is safe for
// concurrent queries.
type Index struct {
	opts     Options
	records  []map[string]any
	displays []string
	trie     *patricia.Trie
	pred     *cel.Predicate
	log      logr.Logger
}

// New indexes records by their display field. Records without one are kept
// out of the index.
func New(records []map[string]any, opts Options, log logr.Logger) (*Index, error) {
	if strings.TrimSpace(opts.DisplayKey) == "" {
		return nil, typeahead.ErrMissingDisplayKey
	}
	ix := &Index{opts: opts, trie: patricia.NewTrie(), log: log.WithName("source")}

	if opts.Where != "" {
		eval, err := cel.NewEvaluator()
		if err != nil {
			return nil, err
		}
		if ix.pred, err = eval.Compile(opts.Where); err != nil {
			return nil, fmt.Errorf("--where: %w", err)
		}
	}

	for _, rec := range records {
		display, ok := typeahead.DisplayValue(rec, opts.DisplayKey)
		if !ok {
			continue
		}
		i := len(ix.records)
		ix.records = append(ix.records, rec)
		ix.displays = append(ix.displays, display)

		key := patricia.Prefix(strings.ToLower(display))
		if prev, ok := ix.trie.Get(key).([]int); ok {
			ix.trie.Set(key, append(prev, i))
		} else {
			ix.trie.Insert(key, []int{i})
		}
	}
	ix.log.V(1).Info("indexed", "records", len(ix.records), "skipped", len(records)-len(ix.records), "where", opts.Where)
	return ix, nil
}

// Len returns the number of indexed records.
func (ix *Index) Len() int { return len(ix.records) }

// Query returns up to limit records matching text. An empty text lists
// records in load order.
func (ix *Index) Query(ctx context.Context, text string, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lower := strings.ToLower(text)

	var hits []int
	if lower == "" {
		hits = make([]int, len(ix.records))
		for i := range hits {
			hits[i] = i
		}
	} else {
		hits = ix.prefixHits(lower)
		if len(hits) == 0 && ix.opts.Fuzzy {
			var err error
			if hits, err = ix.fuzzyHits(ctx, lower); err != nil {
				return nil, err
			}
		}
	}

	out := make([]map[string]any, 0, min(limit, len(hits)))
	for _, i := range hits {
		if len(out) == limit {
			break
		}
		if !ix.allowed(i) {
			continue
		}
		out = append(out, ix.records[i])
	}
	ix.log.V(2).Info("query", "text", text, "hits", len(hits), "returned", len(out))
	return out, nil
}

// prefixHits orders matches by display length, then alphabetically, then
// load order.
func (ix *Index) prefixHits(lower string) []int {
	var hits []int
	_ = ix.trie.VisitSubtree(patricia.Prefix(lower), func(_ patricia.Prefix, item patricia.Item) error {
		hits = append(hits, item.([]int)...)
		return nil
	})
	sort.SliceStable(hits, func(a, b int) bool {
		da, db := ix.displays[hits[a]], ix.displays[hits[b]]
		if la, lb := utf8.RuneCountInString(da), utf8.RuneCountInString(db); la != lb {
			return la < lb
		}
		if da != db {
			return strings.ToLower(da) < strings.ToLower(db)
		}
		return hits[a] < hits[b]
	})
	return hits
}

// fuzzyHits ranks records by the edit distance between the query and the
// display prefix of the same length.
func (ix *Index) fuzzyHits(ctx context.Context, lower string) ([]int, error) {
	n := utf8.RuneCountInString(lower)
	limit := ix.opts.MaxDistance
	if limit <= 0 {
		limit = max(1, n/3)
	}
	type scored struct{ idx, dist int }
	var ranked []scored
	for i, d := range ix.displays {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		head := []rune(strings.ToLower(d))
		if len(head) > n {
			head = head[:n]
		}
		if dist := levenshtein.ComputeDistance(lower, string(head)); dist <= limit {
			ranked = append(ranked, scored{i, dist})
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].dist < ranked[b].dist })
	hits := make([]int, len(ranked))
	for i, r := range ranked {
		hits[i] = r.idx
	}
	return hits, nil
}

func (ix *Index) allowed(i int) bool {
	if ix.pred == nil {
		return true
	}
	ok, err := ix.pred.Match(ix.records[i])
	if err != nil {
		ix.log.V(2).Info("predicate failed", "display", ix.displays[i], "error", err.Error())
		return false
	}
	return ok
}
