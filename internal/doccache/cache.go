package doccache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const docsBucket = "api_docs"

type Entry struct {
	Body        []byte    `json:"body"`
	ContentType string    `json:"content_type"`
	StoredAt    time.Time `json:"stored_at"`
}

// Cache is safe for concurrent use. A Cache opened without a path, or a nil
// *Cache, stores nothing and never hits.
type Cache struct {
	db  *bbolt.DB
	now func() time.Time
}

func Open(path string) (*Cache, error) {
	c := &Cache{now: time.Now}
	if path == "" {
		return c, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create doc cache dir: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open doc cache %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(docsBucket)); err != nil {
			return fmt.Errorf("create docs bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	c.db = db
	return c, nil
}

func (c *Cache) Enabled() bool {
	return c != nil && c.db != nil
}

func (c *Cache) Put(service string, body []byte, contentType string) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(Entry{
		Body:        body,
		ContentType: contentType,
		StoredAt:    c.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal doc entry: %w", err)
	}

	return c.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket([]byte(docsBucket)).Put([]byte(service), data); err != nil {
			return fmt.Errorf("store docs for %s: %w", service, err)
		}
		return nil
	})
}

func (c *Cache) Get(service string) (Entry, bool, error) {
	var entry Entry
	if !c.Enabled() {
		return entry, false, nil
	}

	var found bool
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(docsBucket)).Get([]byte(service))
		if data == nil {
			return nil
		}
		found = true
		if err := json.Unmarshal(data, &entry); err != nil {
			return fmt.Errorf("unmarshal docs for %s: %w", service, err)
		}
		return nil
	})
	if err != nil {
		return Entry{}, false, err
	}

	return entry, found, nil
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.db.Close()
}
