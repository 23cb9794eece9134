// Package store implements optimistic-concurrency persistence of projects on top of an
// objectstore.Bucket. Each project is one document; every mutation is a single
// read-check-write attempt that is committed with a conditional write on the version read.
package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/objectstore"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/domain"
)

const (
	defaultTimeout = 5 * time.Second
	createAttempts = 5
)

// Mutator edits a copy of the stored project. Returning an error aborts the update
// without writing.
type Mutator func(p *domain.Project) error

type Options struct {
	// Timeout bounds every individual storage call.
	Timeout   time.Duration
	CacheSize int
	CacheTTL  time.Duration
	Logger    *zap.Logger
	Metrics   *Metrics
	Clock     func() time.Time
	// NewID generates ids for projects created without one.
	NewID func() (string, error)
}

// Store is the project store. It is safe for concurrent use.
type Store struct {
	bucket  objectstore.Bucket
	cache   *Cache
	timeout time.Duration
	log     *zap.Logger
	metrics *Metrics
	now     func() time.Time
	newID   func() (string, error)
}

func New(bucket objectstore.Bucket, opt Options) *Store {
	s := &Store{
		bucket:  bucket,
		cache:   NewCache(opt.CacheSize, opt.CacheTTL),
		timeout: opt.Timeout,
		log:     opt.Logger,
		metrics: opt.Metrics,
		now:     opt.Clock,
		newID:   opt.NewID,
	}
	if s.timeout <= 0 {
		s.timeout = defaultTimeout
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() (string, error) { return domain.NewPublicID(domain.ProjectIDPrefix) }
	}
	return s
}

// Get returns the project, possibly from cache. Tombstoned projects are ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (p domain.Project, err error) {
	defer s.track("get", time.Now(), &err)

	if !domain.ValidProjectID(id) {
		return domain.Project{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if cached, ok := s.cache.Get(id); ok {
		s.metrics.cacheResult(true)
		return cached, nil
	}
	s.metrics.cacheResult(false)

	epoch := s.cache.Epoch()
	doc, _, err := s.read(ctx, id)
	if err != nil {
		return domain.Project{}, err
	}
	s.cache.Put(doc.Project, epoch)
	return doc.Project, nil
}

// Create stores a new project at revision 0. When fields.ID is empty an id is generated;
// a caller-supplied id that already exists, even as a tombstone, is ErrConflict.
func (s *Store) Create(ctx context.Context, fields domain.ProjectFields) (p domain.Project, err error) {
	defer s.track("create", time.Now(), &err)

	if err := fields.Validate(); err != nil {
		return domain.Project{}, err
	}
	if fields.ID != "" {
		return s.create(ctx, fields.ID, fields)
	}

	for i := 0; i < createAttempts; i++ {
		id, err := s.newID()
		if err != nil {
			return domain.Project{}, err
		}
		p, err := s.create(ctx, id, fields)
		if errors.Is(err, domain.ErrConflict) {
			// generated id collided → retry
			continue
		}
		return p, err
	}
	return domain.Project{}, fmt.Errorf("failed to generate unique project id")
}

func (s *Store) create(ctx context.Context, id string, fields domain.ProjectFields) (domain.Project, error) {
	now := s.now().UTC()
	p := domain.NewProject(id, fields)
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := p.Validate(); err != nil {
		return domain.Project{}, err
	}
	data, err := encodeDocument(document{Project: p})
	if err != nil {
		return domain.Project{}, err
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	_, err = s.bucket.Create(cctx, objectKey(id), data)
	s.cache.Invalidate(id)
	if err != nil {
		if errors.Is(err, objectstore.ErrPreconditionFailed) {
			return domain.Project{}, fmt.Errorf("%w: project %s already exists", domain.ErrConflict, id)
		}
		return domain.Project{}, s.unavailable("create", id, err)
	}

	s.log.Info("project created", zap.String("project_id", id), zap.String("category", string(p.Category)))
	return p, nil
}

// Update applies mutate to the stored project if its revision equals expected and writes
// the result as revision expected+1. The mutator cannot change the id, revision,
// timestamps or comment list; those are restored before validation.
func (s *Store) Update(ctx context.Context, id string, expected int64, mutate Mutator) (p domain.Project, err error) {
	defer s.track("update", time.Now(), &err)

	return s.modify(ctx, "update", id, expected, func(d *document) error {
		orig := d.Project.Clone()
		if err := mutate(&d.Project); err != nil {
			return err
		}
		d.Project.ID = orig.ID
		d.Project.Revision = orig.Revision
		d.Project.CreatedAt = orig.CreatedAt
		d.Project.Comments = orig.Comments
		return nil
	})
}

// AddComment appends c. An empty c.ID is assigned a UUID; CreatedAt is always stamped.
func (s *Store) AddComment(ctx context.Context, id string, expected int64, c domain.Comment) (p domain.Project, err error) {
	defer s.track("add_comment", time.Now(), &err)

	if err := c.Validate(); err != nil {
		return domain.Project{}, err
	}
	return s.modify(ctx, "add_comment", id, expected, func(d *document) error {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if d.Project.CommentIndex(c.ID) >= 0 {
			return domain.NewValidationError("id", "duplicate comment id "+c.ID)
		}
		c.CreatedAt = s.now().UTC()
		d.Project.Comments = append(d.Project.Comments, c)
		return nil
	})
}

// RemoveComment removes the comment with commentID, or fails with ErrCommentNotFound.
func (s *Store) RemoveComment(ctx context.Context, id string, expected int64, commentID string) (p domain.Project, err error) {
	defer s.track("remove_comment", time.Now(), &err)

	return s.modify(ctx, "remove_comment", id, expected, func(d *document) error {
		i := d.Project.CommentIndex(commentID)
		if i < 0 {
			return fmt.Errorf("%w: %s", domain.ErrCommentNotFound, commentID)
		}
		d.Project.Comments = append(d.Project.Comments[:i:i], d.Project.Comments[i+1:]...)
		return nil
	})
}

// Delete replaces the project with a tombstone at revision expected+1.
func (s *Store) Delete(ctx context.Context, id string, expected int64) (err error) {
	defer s.track("delete", time.Now(), &err)

	_, err = s.modify(ctx, "delete", id, expected, func(d *document) error {
		at := s.now().UTC()
		d.Deleted = true
		d.DeletedAt = &at
		return nil
	})
	if err == nil {
		s.log.Info("project deleted", zap.String("project_id", id))
	}
	return err
}

// modify is the single read-check-write attempt shared by every mutation.
func (s *Store) modify(ctx context.Context, op, id string, expected int64, fn func(*document) error) (domain.Project, error) {
	if !domain.ValidProjectID(id) {
		return domain.Project{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	doc, etag, err := s.read(ctx, id)
	if err != nil {
		s.cache.Invalidate(id)
		return domain.Project{}, err
	}
	if doc.Project.Revision != expected {
		s.cache.Invalidate(id)
		err := &domain.ConflictError{ID: id, Expected: expected, Actual: doc.Project.Revision}
		s.log.Debug("revision conflict", zap.String("op", op), zap.String("project_id", id),
			zap.Int64("expected", expected), zap.Int64("actual", doc.Project.Revision))
		return domain.Project{}, err
	}

	next := document{Project: doc.Project.Clone()}
	if err := fn(&next); err != nil {
		return domain.Project{}, err
	}
	next.Project.Revision = expected + 1
	next.Project.UpdatedAt = s.now().UTC()
	if err := next.Project.Validate(); err != nil {
		return domain.Project{}, err
	}

	data, err := encodeDocument(next)
	if err != nil {
		return domain.Project{}, err
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	_, err = s.bucket.Replace(cctx, objectKey(id), data, etag)
	s.cache.Invalidate(id)
	switch {
	case err == nil:
	case errors.Is(err, objectstore.ErrPreconditionFailed):
		s.log.Debug("concurrent write", zap.String("op", op), zap.String("project_id", id))
		return domain.Project{}, &domain.ConflictError{ID: id, Expected: expected, Actual: -1}
	case errors.Is(err, objectstore.ErrNotExist):
		return domain.Project{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	default:
		return domain.Project{}, s.unavailable(op, id, err)
	}

	return next.Project, nil
}

// List yields every live project matching f. Each item is decoded from a single object
// read. Projects deleted while the listing runs are skipped. Iteration stops after the
// first error.
func (s *Store) List(ctx context.Context, f domain.Filter) iter.Seq2[domain.Project, error] {
	return func(yield func(domain.Project, error) bool) {
		start := time.Now()
		var listErr error
		defer func() { s.metrics.observe("list", start, listErr) }()

		keys, err := s.keys(ctx, "list")
		if err != nil {
			listErr = err
			yield(domain.Project{}, err)
			return
		}
		for _, key := range keys {
			id, ok := idFromKey(key)
			if !ok {
				continue
			}

			epoch := s.cache.Epoch()
			doc, _, err := s.read(ctx, id)
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				listErr = err
				yield(domain.Project{}, err)
				return
			}
			s.cache.Put(doc.Project, epoch)

			if !f.Match(doc.Project) {
				continue
			}
			if !yield(doc.Project, nil) {
				return
			}
		}
	}
}

// Purge hard-deletes tombstones deleted before cutoff and reports how many were removed.
// A tombstone that changes while being purged is left alone.
func (s *Store) Purge(ctx context.Context, cutoff time.Time) (n int, err error) {
	defer s.track("purge", time.Now(), &err)

	keys, err := s.keys(ctx, "purge")
	if err != nil {
		return 0, err
	}
	for _, key := range keys {
		id, ok := idFromKey(key)
		if !ok {
			continue
		}
		doc, etag, err := s.readRaw(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return n, err
		}
		if !doc.Deleted || doc.DeletedAt == nil || !doc.DeletedAt.Before(cutoff) {
			continue
		}

		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		err = s.bucket.Delete(cctx, key, etag)
		cancel()
		switch {
		case err == nil:
			n++
			s.cache.Invalidate(id)
			s.log.Debug("tombstone purged", zap.String("project_id", id))
		case errors.Is(err, objectstore.ErrPreconditionFailed), errors.Is(err, objectstore.ErrNotExist):
		default:
			return n, s.unavailable("purge", id, err)
		}
	}
	return n, nil
}

// Ping checks that the backing bucket is reachable.
func (s *Store) Ping(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.bucket.Ping(cctx); err != nil {
		return s.unavailable("ping", "", err)
	}
	return nil
}

// keys enumerates project object keys under one storage timeout. Items are read
// afterwards, each under its own timeout.
func (s *Store) keys(ctx context.Context, op string) ([]string, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var keys []string
	for key, err := range s.bucket.Keys(cctx, keyPrefix) {
		if err != nil {
			return nil, s.unavailable(op, "", err)
		}
		keys = append(keys, key)
	}
	if err := cctx.Err(); err != nil {
		return nil, s.unavailable(op, "", err)
	}
	return keys, nil
}

// read loads a live document. Missing and tombstoned documents are ErrNotFound.
func (s *Store) read(ctx context.Context, id string) (document, string, error) {
	doc, etag, err := s.readRaw(ctx, id)
	if err != nil {
		return document{}, "", err
	}
	if doc.Deleted {
		return document{}, "", fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return doc, etag, nil
}

// readRaw loads a document including tombstones.
func (s *Store) readRaw(ctx context.Context, id string) (document, string, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	obj, err := s.bucket.Get(cctx, objectKey(id))
	if err != nil {
		if errors.Is(err, objectstore.ErrNotExist) {
			return document{}, "", fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		return document{}, "", s.unavailable("read", id, err)
	}
	doc, err := decodeDocument(obj.Data)
	if err != nil {
		return document{}, "", s.unavailable("read", id, err)
	}
	return doc, obj.ETag, nil
}

func (s *Store) track(op string, start time.Time, errp *error) {
	s.metrics.observe(op, start, *errp)
}

func (s *Store) unavailable(op, id string, err error) error {
	s.log.Warn("storage unavailable", zap.String("op", op), zap.String("project_id", id), zap.Error(err))
	if id == "" {
		return fmt.Errorf("%w: %s: %w", domain.ErrStorageUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s %s: %w", domain.ErrStorageUnavailable, op, id, err)
}
