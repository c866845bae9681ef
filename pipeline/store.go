package pipeline

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/phicalculus/phin/rules"
	"github.com/phicalculus/phin/syntax"
)

var normalizedBucket = []byte("normalized")

// Store caches normalization results on disk.
type Store struct {
	filename string
	db       *bolt.DB
}

// NewStore makes a Store for the given file.  Call Open before use.
func NewStore(filename string) *Store {
	return &Store{filename: filename}
}

// Open opens the underlying bolt database.
func (s *Store) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}
	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db
	return db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(normalizedBucket)
		return err
	})
}

// Close closes the database.
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CacheKey digests a program together with the ruleset that will
// normalize it.  Any change to the program or to a rule's name,
// pattern, result, context or conditions invalidates the entry;
// meta-function sources are not part of the key.
func CacheKey(program string, rs *rules.Ruleset) []byte {
	h := sha256.New()
	h.Write([]byte(program))
	h.Write([]byte{0})
	h.Write([]byte(rs.Title))
	for _, r := range rs.Rules {
		h.Write([]byte{0})
		h.Write([]byte(r.Name))
		h.Write([]byte(r.Pattern.String()))
		h.Write([]byte(r.Result.String()))
		if r.Context != nil {
			fmt.Fprintf(h, "%q %q", r.Context.GlobalID, r.Context.CurrentID)
		}
		for _, c := range r.When {
			fmt.Fprintf(h, "%#v", c)
		}
	}
	return h.Sum(nil)
}

// Normalized fetches a cached result.  The stored value is the
// printed term, parsed back on the way out.
func (s *Store) Normalized(key []byte) (syntax.Object, bool, error) {
	var printed []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(normalizedBucket).Get(key); v != nil {
			printed = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || printed == nil {
		return nil, false, err
	}
	obj, err := syntax.ParseObject(string(printed))
	if err != nil {
		// A corrupt entry is just a miss.
		return nil, false, nil
	}
	return obj, true, nil
}

// SaveNormalized stores a result.
func (s *Store) SaveNormalized(key []byte, t syntax.Object) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(normalizedBucket).Put(key, []byte(t.String()))
	})
}
