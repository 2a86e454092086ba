package search

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Field weights for term-frequency scoring. Title matches dominate body
// matches, body matches dominate tag matches.
const (
	WeightTitle = 4.0
	WeightBody  = 2.0
	WeightTag   = 1.0
)

// Scoring knobs. Recency decays smoothly with a 30-day half-life style
// curve; popularity is logarithmic so a few viral items cannot dominate.
const (
	recencyWeight   = 0.5
	recencyDecayDay = 30.0
	viewWeight      = 0.2
)

// Date-range facet buckets (disjoint)
const (
	BucketLastWeek  = "last_week"
	BucketLastMonth = "last_month"
	BucketOlder     = "older"
)

// Document is the indexable projection of a published content item.
// Tags carry the textual labels fed into tag-weighted postings and
// autocomplete; TagIDs are the structured ids used for filtering only.
type Document struct {
	ID          uint64
	Title       string
	Body        string
	Tags        []string
	TagIDs      []uint64
	CategoryID  uint64
	ContentType string
	PublishedAt time.Time
	ViewCount   uint64
}

// Query is a parsed search request
type Query struct {
	Text        string
	CategoryID  uint64
	TagID       uint64
	ContentType string
	DateFrom    *time.Time
	DateTo      *time.Time
	Page        int
	PerPage     int
}

// Hit is a single ranked match
type Hit struct {
	ID    uint64  `json:"id"`
	Score float64 `json:"score"`
}

// Facets are live counts computed over the filtered result set
type Facets struct {
	Categories   map[uint64]int `json:"categories"`
	ContentTypes map[string]int `json:"content_types"`
	DateRanges   map[string]int `json:"date_ranges"`
}

// Result holds ranked hits plus pagination, facets and suggestions
type Result struct {
	Total       int      `json:"total"`
	Page        int      `json:"page"`
	PerPage     int      `json:"per_page"`
	TotalPages  int      `json:"total_pages"`
	Hits        []Hit    `json:"hits"`
	Facets      Facets   `json:"facets"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// docEntry keeps what removal and filtering need about an indexed document
type docEntry struct {
	terms       []string
	suggestions []string
	tagIDs      []uint64
	categoryID  uint64
	contentType string
	publishedAt time.Time
	viewCount   uint64
}

// Index is an in-process inverted index over published content. All methods
// are safe for concurrent use. Index and Remove are idempotent upserts; the
// index is a derived projection and can be rebuilt from the content store at
// any time.
type Index struct {
	mu       sync.RWMutex
	postings map[string]map[uint64]float64
	docs     map[uint64]*docEntry
	suggest  *trie
	now      func() time.Time
}

// NewIndex creates an empty search index
func NewIndex() *Index {
	return &Index{
		postings: make(map[string]map[uint64]float64),
		docs:     make(map[uint64]*docEntry),
		suggest:  newTrie(),
		now:      time.Now,
	}
}

// Index upserts a document. Re-indexing the same id replaces its postings,
// facet contributions and autocomplete phrases.
func (ix *Index) Index(doc Document) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.removeLocked(doc.ID)

	weighted := make(map[string]float64)
	for term, tf := range termFrequencies(Tokenize(doc.Title)) {
		weighted[term] += float64(tf) * WeightTitle
	}
	for term, tf := range termFrequencies(Tokenize(doc.Body)) {
		weighted[term] += float64(tf) * WeightBody
	}
	for _, tag := range doc.Tags {
		for term, tf := range termFrequencies(Tokenize(tag)) {
			weighted[term] += float64(tf) * WeightTag
		}
	}

	entry := &docEntry{
		terms:       make([]string, 0, len(weighted)),
		tagIDs:      doc.TagIDs,
		categoryID:  doc.CategoryID,
		contentType: doc.ContentType,
		publishedAt: doc.PublishedAt,
		viewCount:   doc.ViewCount,
	}
	for term, w := range weighted {
		posting, ok := ix.postings[term]
		if !ok {
			posting = make(map[uint64]float64)
			ix.postings[term] = posting
		}
		posting[doc.ID] = w
		entry.terms = append(entry.terms, term)
	}

	if doc.Title != "" {
		entry.suggestions = append(entry.suggestions, doc.Title)
	}
	entry.suggestions = append(entry.suggestions, doc.Tags...)
	for _, phrase := range entry.suggestions {
		ix.suggest.insert(phrase, 1)
	}

	ix.docs[doc.ID] = entry
}

// Rebuild replaces the entire index contents with the given documents
func (ix *Index) Rebuild(docs []Document) {
	ix.mu.Lock()
	ix.postings = make(map[string]map[uint64]float64)
	ix.docs = make(map[uint64]*docEntry)
	ix.suggest = newTrie()
	ix.mu.Unlock()

	for _, doc := range docs {
		ix.Index(doc)
	}
}

// Remove deletes a document from the index. Removing an unknown id is a no-op.
func (ix *Index) Remove(id uint64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(id)
}

func (ix *Index) removeLocked(id uint64) {
	entry, ok := ix.docs[id]
	if !ok {
		return
	}
	for _, term := range entry.terms {
		if posting, ok := ix.postings[term]; ok {
			delete(posting, id)
			if len(posting) == 0 {
				delete(ix.postings, term)
			}
		}
	}
	for _, phrase := range entry.suggestions {
		ix.suggest.insert(phrase, -1)
	}
	delete(ix.docs, id)
}

// DocCount returns the number of indexed documents
func (ix *Index) DocCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Contains reports whether a document id is currently indexed
func (ix *Index) Contains(id uint64) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.docs[id]
	return ok
}

// Search ranks documents matching the query. An empty query text matches
// every indexed document, ordered by recency and popularity, which serves
// filter-only browsing. Facets are computed over the filtered set before
// pagination.
func (ix *Index) Search(q Query) *Result {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 20
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	terms := Tokenize(q.Text)
	now := ix.now()

	// candidate set: term-frequency sums, or every doc for empty queries
	tfScores := make(map[uint64]float64)
	if len(terms) == 0 {
		for id := range ix.docs {
			tfScores[id] = 0
		}
	} else {
		for _, term := range terms {
			for id, w := range ix.postings[term] {
				tfScores[id] += w
			}
		}
	}

	facets := Facets{
		Categories:   make(map[uint64]int),
		ContentTypes: make(map[string]int),
		DateRanges:   make(map[string]int),
	}

	hits := make([]Hit, 0, len(tfScores))
	order := make(map[uint64]*docEntry, len(tfScores))
	for id, tf := range tfScores {
		entry := ix.docs[id]
		if !matchesFilters(entry, q) {
			continue
		}

		facets.Categories[entry.categoryID]++
		facets.ContentTypes[entry.contentType]++
		facets.DateRanges[dateBucket(now, entry.publishedAt)]++

		hits = append(hits, Hit{ID: id, Score: score(now, tf, entry)})
		order[id] = entry
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		pi, pj := order[hits[i].ID].publishedAt, order[hits[j].ID].publishedAt
		if !pi.Equal(pj) {
			return pi.After(pj)
		}
		return hits[i].ID < hits[j].ID
	})

	total := len(hits)
	result := &Result{
		Total:      total,
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalPages: (total + q.PerPage - 1) / q.PerPage,
		Facets:     facets,
	}

	start := (q.Page - 1) * q.PerPage
	if start < total {
		end := start + q.PerPage
		if end > total {
			end = total
		}
		result.Hits = hits[start:end]
	} else {
		result.Hits = []Hit{}
	}

	// few or no matches: offer prefix completions for the raw query
	if total < 5 && len(terms) > 0 {
		result.Suggestions = ix.suggest.suggest(q.Text, 5)
	}

	return result
}

// Autocomplete returns at most limit phrase completions for prefix, ordered
// by descending usage frequency.
func (ix *Index) Autocomplete(prefix string, limit int) []string {
	if limit <= 0 {
		limit = 10
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.suggest.suggest(prefix, limit)
}

func matchesFilters(entry *docEntry, q Query) bool {
	if q.CategoryID != 0 && entry.categoryID != q.CategoryID {
		return false
	}
	if q.ContentType != "" && entry.contentType != q.ContentType {
		return false
	}
	if q.TagID != 0 && !hasTagID(entry.tagIDs, q.TagID) {
		return false
	}
	if q.DateFrom != nil && entry.publishedAt.Before(*q.DateFrom) {
		return false
	}
	if q.DateTo != nil && entry.publishedAt.After(*q.DateTo) {
		return false
	}
	return true
}

func hasTagID(ids []uint64, want uint64) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}

func score(now time.Time, tf float64, entry *docEntry) float64 {
	ageDays := now.Sub(entry.publishedAt).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	recency := recencyWeight * math.Exp(-ageDays/recencyDecayDay)
	popularity := viewWeight * math.Log1p(float64(entry.viewCount))
	return tf*(1+recency) + recency + popularity
}

func dateBucket(now, publishedAt time.Time) string {
	age := now.Sub(publishedAt)
	switch {
	case age <= 7*24*time.Hour:
		return BucketLastWeek
	case age <= 30*24*time.Hour:
		return BucketLastMonth
	default:
		return BucketOlder
	}
}
