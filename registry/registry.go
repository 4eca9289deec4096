// File: registry/registry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package registry

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

const (
	// DirectoryKey is the top-level bucket holding one sub-bucket per service.
	DirectoryKey = "GuestCommunicationServices"
	// ElementName is the value key carrying the display name.
	ElementName = "ElementName"
)

var (
	// ErrNotFound is returned for a missing directory or service.
	ErrNotFound = errors.New("registry: not found")
	// ErrInvalidName rejects empty display names.
	ErrInvalidName = errors.New("registry: empty element name")
)

// ServiceData is one directory entry.
type ServiceData struct {
	ID          uuid.UUID
	ElementName string
}

// Service is a registered entry bound to its registry.
type Service struct {
	data ServiceData
	reg  *Registry
}

// ID returns the service identifier.
func (s *Service) ID() uuid.UUID { return s.data.ID }

// ElementName returns the display name as last read or written.
func (s *Service) ElementName() string { return s.data.ElementName }

// Data returns a copy of the entry.
func (s *Service) Data() ServiceData { return s.data }

// SetElementName renames the display name and returns the previous one.
func (s *Service) SetElementName(to string) (string, error) {
	if to == "" {
		return "", ErrInvalidName
	}
	unlock := s.reg.writeLock()
	defer unlock()
	err := s.reg.db.Update(func(tx *bolt.Tx) error {
		b, err := serviceBucket(tx, s.data.ID)
		if err != nil {
			return err
		}
		return b.Put([]byte(ElementName), []byte(to))
	})
	if err != nil {
		return "", err
	}
	prev := s.data.ElementName
	s.data.ElementName = to
	return prev, nil
}

// Option customizes Open/Create.
type Option func(*options)

type options struct {
	lock    bool
	timeout time.Duration
}

// WithoutLock disables the directory-wide RWMutex.
func WithoutLock() Option {
	return func(o *options) { o.lock = false }
}

// WithTimeout bounds how long Open waits for the file lock held by another process.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// Registry is the service directory.
type Registry struct {
	db   *bolt.DB
	lock atomic.Pointer[sync.RWMutex]
}

// Open opens an existing directory.
func Open(path string, opts ...Option) (*Registry, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: directory %s", ErrNotFound, path)
		}
		return nil, err
	}
	r, err := open(path, opts)
	if err != nil {
		return nil, err
	}
	err = r.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(DirectoryKey)) == nil {
			return fmt.Errorf("%w: directory %s", ErrNotFound, path)
		}
		return nil
	})
	if err != nil {
		r.db.Close()
		return nil, err
	}
	return r, nil
}

// Create opens the directory, creating it if missing.
func Create(path string, opts ...Option) (*Registry, error) {
	r, err := open(path, opts)
	if err != nil {
		return nil, err
	}
	err = r.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(DirectoryKey))
		return err
	})
	if err != nil {
		r.db.Close()
		return nil, fmt.Errorf("registry: create directory: %w", err)
	}
	return r, nil
}

func open(path string, opts []Option) (*Registry, error) {
	o := options{lock: true, timeout: time.Second}
	for _, fn := range opts {
		fn(&o)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: o.timeout})
	if err != nil {
		return nil, fmt.Errorf("registry: open %s: %w", path, err)
	}
	r := &Registry{db: db}
	r.SetLocking(o.lock)
	return r, nil
}

// Close releases the underlying file.
func (r *Registry) Close() error {
	return r.db.Close()
}

// SetLocking turns the directory-wide RWMutex on or off.
func (r *Registry) SetLocking(enabled bool) {
	if !enabled {
		r.lock.Store(nil)
		return
	}
	if r.lock.Load() == nil {
		r.lock.CompareAndSwap(nil, new(sync.RWMutex))
	}
}

// Locking reports whether the directory lock is active.
func (r *Registry) Locking() bool {
	return r.lock.Load() != nil
}

func (r *Registry) readLock() func() {
	l := r.lock.Load()
	if l == nil {
		return func() {}
	}
	l.RLock()
	return l.RUnlock
}

func (r *Registry) writeLock() func() {
	l := r.lock.Load()
	if l == nil {
		return func() {}
	}
	l.Lock()
	return l.Unlock
}

// Register creates or overwrites the entry for data.ID.
func (r *Registry) Register(data ServiceData) (*Service, error) {
	if data.ElementName == "" {
		return nil, ErrInvalidName
	}
	unlock := r.writeLock()
	defer unlock()
	err := r.db.Update(func(tx *bolt.Tx) error {
		return put(tx, data)
	})
	if err != nil {
		return nil, fmt.Errorf("registry: register %s: %w", data.ID, err)
	}
	return &Service{data: data, reg: r}, nil
}

// Get reads one entry.
func (r *Registry) Get(id uuid.UUID) (*Service, error) {
	unlock := r.readLock()
	defer unlock()
	var name string
	err := r.db.View(func(tx *bolt.Tx) error {
		b, err := serviceBucket(tx, id)
		if err != nil {
			return err
		}
		name = string(b.Get([]byte(ElementName)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Service{data: ServiceData{ID: id, ElementName: name}, reg: r}, nil
}

// Delete removes an entry and everything under it.
func (r *Registry) Delete(id uuid.UUID) error {
	unlock := r.writeLock()
	defer unlock()
	return r.db.Update(func(tx *bolt.Tx) error {
		return remove(tx, id)
	})
}

// Rename moves the entry at from to the identifier to, keeping its name.
// The move is a single transaction.
func (r *Registry) Rename(from, to uuid.UUID) (*Service, error) {
	unlock := r.writeLock()
	defer unlock()
	var data ServiceData
	err := r.db.Update(func(tx *bolt.Tx) error {
		b, err := serviceBucket(tx, from)
		if err != nil {
			return err
		}
		data = ServiceData{ID: to, ElementName: string(b.Get([]byte(ElementName)))}
		if err := remove(tx, from); err != nil {
			return err
		}
		return put(tx, data)
	})
	if err != nil {
		return nil, err
	}
	return &Service{data: data, reg: r}, nil
}

// List returns every entry in identifier order. Keys that are not valid
// identifiers are skipped.
func (r *Registry) List() ([]*Service, error) {
	unlock := r.readLock()
	defer unlock()
	var out []*Service
	err := r.db.View(func(tx *bolt.Tx) error {
		dir := tx.Bucket([]byte(DirectoryKey))
		if dir == nil {
			return ErrNotFound
		}
		return dir.ForEach(func(k, v []byte) error {
			if v != nil {
				return nil
			}
			id, err := uuid.ParseBytes(k)
			if err != nil {
				return nil
			}
			name := dir.Bucket(k).Get([]byte(ElementName))
			out = append(out, &Service{data: ServiceData{ID: id, ElementName: string(name)}, reg: r})
			return nil
		})
	})
	return out, err
}

func serviceBucket(tx *bolt.Tx, id uuid.UUID) (*bolt.Bucket, error) {
	dir := tx.Bucket([]byte(DirectoryKey))
	if dir == nil {
		return nil, ErrNotFound
	}
	b := dir.Bucket([]byte(id.String()))
	if b == nil {
		return nil, fmt.Errorf("%w: service %s", ErrNotFound, id)
	}
	return b, nil
}

func put(tx *bolt.Tx, data ServiceData) error {
	dir := tx.Bucket([]byte(DirectoryKey))
	if dir == nil {
		return ErrNotFound
	}
	b, err := dir.CreateBucketIfNotExists([]byte(data.ID.String()))
	if err != nil {
		return err
	}
	return b.Put([]byte(ElementName), []byte(data.ElementName))
}

func remove(tx *bolt.Tx, id uuid.UUID) error {
	dir := tx.Bucket([]byte(DirectoryKey))
	if dir == nil {
		return ErrNotFound
	}
	err := dir.DeleteBucket([]byte(id.String()))
	if errors.Is(err, bolt.ErrBucketNotFound) {
		return fmt.Errorf("%w: service %s", ErrNotFound, id)
	}
	return err
}
