// Package webhook receives GitHub webhooks and feeds push events to a
// single worker, so at most one post attempt is outstanding.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/log"
)

const (
	DefaultQueueSize = 16
	maxBodyBytes     = 5 << 20
	signatureHeader  = "X-Hub-Signature-256"
	eventHeader      = "X-GitHub-Event"
)

// Job is one queued dispatcher run.
type Job struct {
	Repo    domain.WatchedRepo
	Ref     string
	Event   string
	Commits int
}

// HandleFunc processes one job. It runs on the worker goroutine.
type HandleFunc func(ctx context.Context, job Job)

// Options configure a Server.
type Options struct {
	// Secret enables X-Hub-Signature-256 verification when non-empty.
	Secret    string
	QueueSize int
	Handle    HandleFunc
	Logger    domain.Logger
	// AccessLog receives one line per request. Nil discards.
	AccessLog io.Writer
}

// Server is the webhook HTTP server plus its worker queue.
type Server struct {
	engine *gin.Engine
	secret []byte
	jobs   chan Job
	handle HandleFunc
	logger domain.Logger
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NopLogger{}
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.AccessLog == nil {
		opts.AccessLog = io.Discard
	}

	s := &Server{
		secret: []byte(opts.Secret),
		jobs:   make(chan Job, opts.QueueSize),
		handle: opts.Handle,
		logger: opts.Logger,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Output: opts.AccessLog,
		Formatter: func(p gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				p.ClientIP,
				p.TimeStamp.Format(time.RFC3339),
				p.Method,
				p.Path,
				p.Request.Proto,
				p.StatusCode,
				p.Latency,
				p.Request.UserAgent(),
				p.ErrorMessage,
			)
		},
	}))
	r.Use(gin.Recovery())

	r.GET("/health", s.health)
	hooks := r.Group("/webhook")
	hooks.Use(s.verify)
	{
		hooks.POST("/github", s.github)
		hooks.POST("/test", s.test)
	}

	s.engine = r
	return s
}

// Handler exposes the routes, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr and processes jobs until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	workCtx, stopWork := context.WithCancel(ctx)
	defer stopWork()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.work(workCtx)
	}()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("webhook: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	var err error
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = srv.Shutdown(shutdownCtx)
		cancel()
	case err = <-errCh:
	}
	stopWork()
	<-done

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			if s.handle == nil {
				continue
			}
			s.logger.Info("webhook: running %s for %s", job.Event, job.Repo.Name)
			s.handle(ctx, job)
		}
	}
}

// enqueue never blocks. It reports false when the queue is full.
func (s *Server) enqueue(job Job) bool {
	select {
	case s.jobs <- job:
		return true
	default:
		return false
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "storyteller",
		"queued":  len(s.jobs),
	})
}

// verify reads the body and checks its signature. The body is kept in the
// context for the handlers.
func (s *Server) verify(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	if len(s.secret) > 0 && !ValidSignature(s.secret, body, c.GetHeader(signatureHeader)) {
		s.logger.Warn("webhook: rejected request with bad signature from %s", c.ClientIP())
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	c.Set("body", body)
	c.Next()
}

// ValidSignature checks a GitHub "sha256=<hex>" signature of body.
func ValidSignature(secret, body []byte, header string) bool {
	algo, sig, ok := strings.Cut(header, "=")
	if !ok || algo != "sha256" {
		return false
	}
	got, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), got)
}

// Sign returns the signature header value for body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

type pushPayload struct {
	Ref        string `json:"ref"`
	Deleted    bool   `json:"deleted"`
	Repository struct {
		Name     string `json:"name"`
		FullName string `json:"full_name"`
		CloneURL string `json:"clone_url"`
	} `json:"repository"`
	Commits []json.RawMessage `json:"commits"`
}

type releasePayload struct {
	Action  string `json:"action"`
	Release struct {
		TagName string `json:"tag_name"`
	} `json:"release"`
	Repository struct {
		Name     string `json:"name"`
		CloneURL string `json:"clone_url"`
	} `json:"repository"`
}

func payload(c *gin.Context) []byte {
	v, _ := c.Get("body")
	b, _ := v.([]byte)
	return b
}

func (s *Server) github(c *gin.Context) {
	event := c.GetHeader(eventHeader)

	switch event {
	case "ping":
		c.JSON(http.StatusOK, gin.H{"status": "pong"})
	case "push":
		s.push(c)
	case "release":
		s.release(c)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ignored", "event": event})
	}
}

func (s *Server) push(c *gin.Context) {
	var p pushPayload
	if err := json.Unmarshal(payload(c), &p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid push payload"})
		return
	}
	if p.Repository.Name == "" || p.Repository.CloneURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payload has no repository"})
		return
	}
	if p.Deleted || len(p.Commits) == 0 {
		c.JSON(http.StatusOK, gin.H{"status": "ignored", "reason": "no commits"})
		return
	}

	s.accept(c, Job{
		Repo:    domain.WatchedRepo{Name: p.Repository.Name, URL: p.Repository.CloneURL, Enabled: true},
		Ref:     strings.TrimPrefix(p.Ref, "refs/heads/"),
		Event:   "push",
		Commits: len(p.Commits),
	})
}

func (s *Server) release(c *gin.Context) {
	var p releasePayload
	if err := json.Unmarshal(payload(c), &p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid release payload"})
		return
	}
	if p.Action != "published" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored", "reason": "action " + p.Action})
		return
	}
	if p.Repository.Name == "" || p.Repository.CloneURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payload has no repository"})
		return
	}

	s.accept(c, Job{
		Repo:  domain.WatchedRepo{Name: p.Repository.Name, URL: p.Repository.CloneURL, Enabled: true},
		Ref:   p.Release.TagName,
		Event: "release",
	})
}

type testPayload struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Ref  string `json:"ref"`
}

// test queues a run for an arbitrary repository.
func (s *Server) test(c *gin.Context) {
	var p testPayload
	if err := json.Unmarshal(payload(c), &p); err != nil || p.Name == "" || p.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected {\"name\", \"url\"}"})
		return
	}
	s.accept(c, Job{
		Repo:  domain.WatchedRepo{Name: p.Name, URL: p.URL, Enabled: true},
		Ref:   p.Ref,
		Event: "test",
	})
}

func (s *Server) accept(c *gin.Context, job Job) {
	if !s.enqueue(job) {
		s.logger.Warn("webhook: queue full, dropping %s for %s", job.Event, job.Repo.Name)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queue full"})
		return
	}
	s.logger.Debug("webhook: queued %s for %s (ref %q)", job.Event, job.Repo.Name, job.Ref)
	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "repo": job.Repo.Name})
}
