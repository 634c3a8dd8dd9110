// Package learning keeps a ledger of published posts and their engagement,
// and derives which hooks and templates perform best.
package learning

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/fsutil"
)

var (
	ErrCorrupt      = errors.New("learning: corrupt document")
	ErrPostNotFound = errors.New("learning: post not found")
)

// Metrics are the engagement counters of one post.
type Metrics struct {
	Likes           int     `json:"likes"`
	Retweets        int     `json:"retweets"`
	Replies         int     `json:"replies"`
	Views           int     `json:"views"`
	TotalEngagement int     `json:"total_engagement"`
	EngagementRate  float64 `json:"engagement_rate"`
}

// NewMetrics fills the derived fields. Retweets weigh twice and replies
// three times as much as likes. The rate is a percentage of views.
func NewMetrics(likes, retweets, replies, views int) Metrics {
	m := Metrics{Likes: likes, Retweets: retweets, Replies: replies, Views: views}
	m.TotalEngagement = likes + retweets*2 + replies*3
	if views > 0 {
		m.EngagementRate = float64(m.TotalEngagement) / float64(views) * 100
	}
	return m
}

// PostRecord is one published post.
type PostRecord struct {
	PostID    string    `json:"post_id"`
	Platform  string    `json:"platform"`
	Content   string    `json:"content"`
	HookType  string    `json:"hook_type"`
	Template  string    `json:"template"`
	Timestamp time.Time `json:"timestamp"`
	Metrics   Metrics   `json:"metrics"`
}

// Performance is the average engagement of a hook type or template.
type Performance struct {
	AvgEngagement float64 `json:"avg_engagement"`
	PostCount     int     `json:"post_count"`
}

// Document is the on-disk form of the ledger.
type Document struct {
	Posts               []PostRecord           `json:"posts"`
	HookPerformance     map[string]Performance `json:"hook_performance"`
	TemplatePerformance map[string]Performance `json:"template_performance"`
	LastUpdated         *time.Time             `json:"last_updated"`
}

func emptyDocument() Document {
	return Document{
		Posts:               []PostRecord{},
		HookPerformance:     map[string]Performance{},
		TemplatePerformance: map[string]Performance{},
	}
}

// Ledger is the learning document at a fixed path. Every mutation re-reads
// the file, applies the change and writes it back atomically.
type Ledger struct {
	mu    sync.Mutex
	path  string
	now   func() time.Time
	newID func() string
}

// Open returns a ledger for path. The file is created on first write.
// A corrupt file is reported with ErrCorrupt and treated as empty.
func Open(path string) (*Ledger, error) {
	l := &Ledger{
		path:  path,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.New().String() },
	}
	_, err := readDocument(path)
	return l, err
}

func (l *Ledger) Path() string { return l.path }

func readDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return emptyDocument(), nil
		}
		return emptyDocument(), fmt.Errorf("learning: read %s: %w", path, err)
	}
	if len(data) == 0 {
		return emptyDocument(), nil
	}

	doc := emptyDocument()
	if err := json.Unmarshal(data, &doc); err != nil {
		return emptyDocument(), fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	if doc.Posts == nil {
		doc.Posts = []PostRecord{}
	}
	return doc, nil
}

// Load returns the current document.
func (l *Ledger) Load() (Document, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return readDocument(l.path)
}

func (l *Ledger) update(fn func(doc *Document) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	doc, err := readDocument(l.path)
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}

	now := l.now()
	doc.LastUpdated = &now
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("learning: encode: %w", err)
	}
	if err := fsutil.WriteFileAtomic(l.path, data, 0600); err != nil {
		return fmt.Errorf("learning: write %s: %w", l.path, err)
	}
	return nil
}

// RecordPost appends a post with zero metrics and returns its id.
func (l *Ledger) RecordPost(platform, content, hookType, template string) (string, error) {
	rec := PostRecord{
		PostID:    l.newID(),
		Platform:  platform,
		Content:   content,
		HookType:  hookType,
		Template:  template,
		Timestamp: l.now(),
	}
	err := l.update(func(doc *Document) error {
		doc.Posts = append(doc.Posts, rec)
		return nil
	})
	if err != nil {
		return "", err
	}
	return rec.PostID, nil
}

// UpdateMetrics replaces the metrics of a post and recomputes performance.
func (l *Ledger) UpdateMetrics(postID string, m Metrics) error {
	return l.update(func(doc *Document) error {
		for i := range doc.Posts {
			if doc.Posts[i].PostID == postID {
				doc.Posts[i].Metrics = m
				doc.HookPerformance = performance(doc.Posts, func(p PostRecord) string { return p.HookType })
				doc.TemplatePerformance = performance(doc.Posts, func(p PostRecord) string { return p.Template })
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrPostNotFound, postID)
	})
}

func performance(posts []PostRecord, key func(PostRecord) string) map[string]Performance {
	totals := map[string]int{}
	counts := map[string]int{}
	for _, p := range posts {
		k := key(p)
		totals[k] += p.Metrics.TotalEngagement
		counts[k]++
	}

	out := make(map[string]Performance, len(counts))
	for k, n := range counts {
		out[k] = Performance{AvgEngagement: float64(totals[k]) / float64(n), PostCount: n}
	}
	return out
}

// best returns the key with the highest average. Ties go to the smaller key.
func best(perf map[string]Performance) (string, bool) {
	var (
		name  string
		top   float64
		found bool
	)
	for k, p := range perf {
		if !found || p.AvgEngagement > top || (p.AvgEngagement == top && k < name) {
			name, top, found = k, p.AvgEngagement, true
		}
	}
	return name, found
}

// TopPost is a trimmed post for display.
type TopPost struct {
	Content    string `json:"content"`
	Engagement int    `json:"engagement"`
}

// Insights summarizes the ledger.
type Insights struct {
	TotalPosts          int                    `json:"total_posts"`
	TotalEngagement     int                    `json:"total_engagement"`
	AvgEngagement       float64                `json:"avg_engagement"`
	BestHookType        string                 `json:"best_hook_type,omitempty"`
	BestTemplate        string                 `json:"best_template,omitempty"`
	HookPerformance     map[string]Performance `json:"hook_performance"`
	TemplatePerformance map[string]Performance `json:"template_performance"`
	TopPosts            []TopPost              `json:"top_posts"`
}

// Empty reports whether no post has been recorded yet.
func (i Insights) Empty() bool { return i.TotalPosts == 0 }

const topPostContentLen = 100

// Insights derives aggregate statistics from doc.
func (doc Document) Insights() Insights {
	in := Insights{
		TotalPosts:          len(doc.Posts),
		HookPerformance:     doc.HookPerformance,
		TemplatePerformance: doc.TemplatePerformance,
	}
	if in.TotalPosts == 0 {
		return in
	}

	for _, p := range doc.Posts {
		in.TotalEngagement += p.Metrics.TotalEngagement
	}
	in.AvgEngagement = float64(in.TotalEngagement) / float64(in.TotalPosts)
	in.BestHookType, _ = best(doc.HookPerformance)
	in.BestTemplate, _ = best(doc.TemplatePerformance)

	for _, p := range doc.ranked() {
		if len(in.TopPosts) == 3 {
			break
		}
		content := p.Content
		if r := []rune(content); len(r) > topPostContentLen {
			content = string(r[:topPostContentLen])
		}
		in.TopPosts = append(in.TopPosts, TopPost{Content: content, Engagement: p.Metrics.TotalEngagement})
	}
	return in
}

// ranked returns posts ordered by total engagement, highest first.
// Equal engagement keeps recording order.
func (doc Document) ranked() []PostRecord {
	posts := append([]PostRecord(nil), doc.Posts...)
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Metrics.TotalEngagement > posts[j].Metrics.TotalEngagement
	})
	return posts
}

// HookSuggestions returns the first line of the limit most engaging posts.
func (doc Document) HookSuggestions(limit int) []string {
	var out []string
	for _, p := range doc.ranked() {
		if len(out) == limit {
			break
		}
		line, _, _ := strings.Cut(p.Content, "\n")
		out = append(out, line)
	}
	return out
}

// RecentPosts returns posts recorded at or after since.
func (doc Document) RecentPosts(since time.Time) []PostRecord {
	var out []PostRecord
	for _, p := range doc.Posts {
		if !p.Timestamp.Before(since) {
			out = append(out, p)
		}
	}
	return out
}

var _ domain.PostRecorder = (*Ledger)(nil)
