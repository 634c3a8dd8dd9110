// Package history persists per-repository posting history in a single JSON
// document and answers the first-post and skip questions from it.
//
// Every mutation re-reads the document, applies the change and writes the
// whole document back atomically. The last writer wins; concurrent
// processes writing the same file can lose each other's updates.
package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/fsutil"
)

// ErrCorrupt is wrapped when the history document exists but cannot be parsed.
// The store then behaves as if it were empty.
var ErrCorrupt = errors.New("history: corrupt document")

// Commit is one entry of a repository's append-only commit log.
type Commit struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	Date      string    `json:"date"`
	Author    string    `json:"author"`
	FirstSeen time.Time `json:"first_seen"`
}

// CommitSnapshot is a commit without tracking metadata.
type CommitSnapshot struct {
	Hash    string `json:"hash"`
	Message string `json:"message"`
	Date    string `json:"date"`
	Author  string `json:"author"`
}

// Entry is the history of one watched repository.
type Entry struct {
	URL               string           `json:"url"`
	FirstSeen         time.Time        `json:"first_seen"`
	LastSeen          time.Time        `json:"last_seen"`
	Commits           []Commit         `json:"commits"`
	LatestCommit      *CommitSnapshot  `json:"latest_commit,omitempty"`
	TweetsSent        int              `json:"tweets_sent"`
	LastTweetedCommit string           `json:"last_tweeted_commit,omitempty"`
	LastTweetedAt     *time.Time       `json:"last_tweeted_at,omitempty"`
	FirstTweet        bool             `json:"first_tweet"`
	FirstTweetCommit  string           `json:"first_tweet_commit,omitempty"`
	Past48hCommits    []CommitSnapshot `json:"past_48h_commits,omitempty"`
}

func (e *Entry) hasCommit(hash string) bool {
	for _, c := range e.Commits {
		if c.Hash == hash {
			return true
		}
	}
	return false
}

func (e *Entry) clone() *Entry {
	c := *e
	if e.Commits != nil {
		c.Commits = make([]Commit, len(e.Commits))
		copy(c.Commits, e.Commits)
	}
	if e.Past48hCommits != nil {
		c.Past48hCommits = make([]CommitSnapshot, len(e.Past48hCommits))
		copy(c.Past48hCommits, e.Past48hCommits)
	}
	if e.LatestCommit != nil {
		lc := *e.LatestCommit
		c.LatestCommit = &lc
	}
	if e.LastTweetedAt != nil {
		at := *e.LastTweetedAt
		c.LastTweetedAt = &at
	}
	return &c
}

// Document is the on-disk mapping from repository name to Entry.
type Document map[string]*Entry

// Store is the JSON-backed history. Safe for concurrent use within one process.
type Store struct {
	mu   sync.Mutex
	path string
	doc  Document
	now  func() time.Time
}

// Load opens the history at path. A missing file is an empty store.
// An unparseable file yields a usable empty store, and entries that fail
// to decode are left out; either way the error wraps ErrCorrupt for the
// caller to log.
func Load(path string) (*Store, error) {
	s := &Store{path: path, now: func() time.Time { return time.Now().UTC() }}
	doc, _, err := readDocument(path)
	s.doc = doc
	return s, err
}

// Path returns the document location.
func (s *Store) Path() string { return s.path }

// Reload refreshes the in-memory snapshot from disk.
func (s *Store) Reload() error {
	doc, _, err := readDocument(s.path)
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return err
}

// readDocument decodes path entry by entry. Entries that fail to decode
// are returned raw so a rewrite can keep them. A nil raw map together
// with ErrCorrupt means the document as a whole is unreadable JSON.
func readDocument(path string) (Document, map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Document{}, nil, nil
		}
		return Document{}, nil, fmt.Errorf("history: read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, nil, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}

	doc := make(Document, len(raw))
	broken := map[string]json.RawMessage{}
	var errs []error
	for name, msg := range raw {
		if string(msg) == "null" {
			continue
		}
		var e Entry
		if err := json.Unmarshal(msg, &e); err != nil {
			broken[name] = msg
			errs = append(errs, fmt.Errorf("entry %q: %v", name, err))
			continue
		}
		doc[name] = &e
	}
	if len(errs) > 0 {
		return doc, broken, fmt.Errorf("%w: %s: %w", ErrCorrupt, path, errors.Join(errs...))
	}
	return doc, broken, nil
}

// Update re-reads the document, lets fn mutate it and writes it back.
// Entries that could not be decoded are written back unchanged unless fn
// recreated them. A document that is not JSON at all is moved aside to
// path+".corrupt" and replaced by fn's view of an empty one.
func (s *Store) Update(fn func(doc Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, broken, err := readDocument(s.path)
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	if err != nil && broken == nil {
		if rerr := os.Rename(s.path, s.path+".corrupt"); rerr != nil {
			return fmt.Errorf("history: keep corrupt document: %w", rerr)
		}
	}

	if err := fn(doc); err != nil {
		return err
	}

	out := make(map[string]any, len(doc)+len(broken))
	for name, msg := range broken {
		out[name] = msg
	}
	for name, e := range doc {
		out[name] = e
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("history: encode: %w", err)
	}
	if err := fsutil.WriteFileAtomic(s.path, data, 0600); err != nil {
		return fmt.Errorf("history: write %s: %w", s.path, err)
	}

	s.doc = doc
	return nil
}

// IsFirstPost reports whether name has no recorded successful post.
func (s *Store) IsFirstPost(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.doc[name]
	return !ok || e.TweetsSent == 0
}

// ShouldSkip reports whether latestHash was already posted for name.
// A first post is never skipped. Only the single last posted hash is
// compared, so a rewritten tip with unchanged content is posted again.
func (s *Store) ShouldSkip(name, latestHash string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.doc[name]
	if !ok || e.TweetsSent == 0 {
		return false
	}
	return e.LastTweetedCommit == latestHash
}

// RecordPost counts a confirmed successful post of hash.
func (s *Store) RecordPost(name, hash string) error {
	now := s.now()
	return s.Update(func(doc Document) error {
		e := s.entry(doc, name, "", now)
		e.TweetsSent++
		e.LastTweetedCommit = hash
		e.LastTweetedAt = &now
		return nil
	})
}

// AppendCommitIfNew adds commit to name's log unless its hash is already
// there, and always refreshes latest_commit and last_seen.
func (s *Store) AppendCommitIfNew(name, url string, commit domain.CommitRecord) error {
	now := s.now()
	return s.Update(func(doc Document) error {
		e := s.entry(doc, name, url, now)
		if !e.hasCommit(commit.Hash) {
			e.Commits = append(e.Commits, Commit{
				Hash:      commit.Hash,
				Message:   commit.Message,
				Date:      commit.Timestamp,
				Author:    commit.Author,
				FirstSeen: now,
			})
		}
		e.LastSeen = now
		e.LatestCommit = snapshot(commit)
		return nil
	})
}

// MarkFirstPost flags the entry as having gone through first-post handling.
func (s *Store) MarkFirstPost(name, hash string) error {
	now := s.now()
	return s.Update(func(doc Document) error {
		e := s.entry(doc, name, "", now)
		e.FirstTweet = true
		e.FirstTweetCommit = hash
		return nil
	})
}

// SetRecentCommits stores the informational 48h lookback for name.
func (s *Store) SetRecentCommits(name, url string, commits []domain.CommitRecord) error {
	now := s.now()
	return s.Update(func(doc Document) error {
		e := s.entry(doc, name, url, now)
		e.Past48hCommits = make([]CommitSnapshot, 0, len(commits))
		for _, c := range commits {
			e.Past48hCommits = append(e.Past48hCommits, *snapshot(c))
		}
		return nil
	})
}

// entry returns doc[name], creating it when absent.
func (s *Store) entry(doc Document, name, url string, now time.Time) *Entry {
	e, ok := doc[name]
	if !ok {
		e = &Entry{URL: url, FirstSeen: now, Commits: []Commit{}}
		doc[name] = e
	}
	if url != "" {
		e.URL = url
	}
	return e
}

func snapshot(c domain.CommitRecord) *CommitSnapshot {
	return &CommitSnapshot{Hash: c.Hash, Message: c.Message, Date: c.Timestamp, Author: c.Author}
}

// Entry returns a copy of name's entry.
func (s *Store) Entry(name string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.doc[name]
	if !ok {
		return Entry{}, false
	}
	return *e.clone(), true
}

// Names returns the tracked repository names, sorted.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.doc))
	for name := range s.doc {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a deep copy of the whole document.
func (s *Store) Snapshot() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(Document, len(s.doc))
	for name, e := range s.doc {
		out[name] = e.clone()
	}
	return out
}

var _ domain.HistoryStore = (*Store)(nil)
