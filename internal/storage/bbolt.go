package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	ConfigBucket  = []byte("config")  // Schema version, KDF params, timestamps
	PrivateBucket = []byte("private") // Encrypted check value
	SitesBucket   = []byte("sites")   // Realm -> Site JSON
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
	ConfigSalt     = []byte("salt")
	ConfigIters    = []byte("iterations")
)

// CheckKey is the private bucket key of the verifier
var CheckKey = []byte("check")

var (
	ErrNotFound = errors.New("not found")
	ErrClosed   = errors.New("database closed")
)

// Storage provides BBolt-based storage for the site registry
type Storage struct {
	db   *bolt.DB
	path string
}

// Open opens or creates a database
func Open(path string) (*Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Storage{db: db, path: path}, nil
}

// Close closes the database. It is safe after a failed Compact left no
// open handle.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.path
}

// Initialize creates the bucket structure for a new registry
func (s *Storage) Initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, PrivateBucket, SitesBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if config.Get(ConfigVersion) != nil {
			return nil
		}
		if err := config.Put(ConfigVersion, []byte("1")); err != nil {
			return err
		}

		created, _ := time.Now().MarshalBinary()
		if err := config.Put(ConfigCreated, created); err != nil {
			return err
		}
		return config.Put(ConfigModified, created)
	})
}

// IsInitialized checks if the database has been initialized
func (s *Storage) IsInitialized() (bool, error) {
	var initialized bool
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config != nil && config.Get(ConfigVersion) != nil {
			initialized = true
		}
		return nil
	})
	return initialized, err
}

// SetSalt stores the KDF salt
func (s *Storage) SetSalt(salt []byte) error {
	return s.put(ConfigBucket, ConfigSalt, salt)
}

// GetSalt retrieves the KDF salt
func (s *Storage) GetSalt() ([]byte, error) {
	salt, err := s.get(ConfigBucket, ConfigSalt)
	if err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	return salt, nil
}

// SetIterations stores the KDF iterations
func (s *Storage) SetIterations(iterations uint32) error {
	iters := make([]byte, 4)
	binary.BigEndian.PutUint32(iters, iterations)
	return s.put(ConfigBucket, ConfigIters, iters)
}

// GetIterations retrieves the KDF iterations
func (s *Storage) GetIterations() (uint32, error) {
	iters, err := s.get(ConfigBucket, ConfigIters)
	if err != nil {
		return 0, fmt.Errorf("iterations: %w", err)
	}
	if len(iters) != 4 {
		return 0, fmt.Errorf("iterations: malformed value of %d bytes", len(iters))
	}
	return binary.BigEndian.Uint32(iters), nil
}

// SetCheck stores the encrypted verifier
func (s *Storage) SetCheck(sealed []byte) error {
	return s.put(PrivateBucket, CheckKey, sealed)
}

// GetCheck retrieves the encrypted verifier. Returns ErrNotFound when the
// registry was created without one.
func (s *Storage) GetCheck() ([]byte, error) {
	return s.get(PrivateBucket, CheckKey)
}

// UpdateModified updates the last modified timestamp
func (s *Storage) UpdateModified() error {
	modified, _ := time.Now().MarshalBinary()
	return s.put(ConfigBucket, ConfigModified, modified)
}

// GetModified retrieves the last modified timestamp
func (s *Storage) GetModified() (time.Time, error) {
	var modified time.Time
	data, err := s.get(ConfigBucket, ConfigModified)
	if err != nil {
		return modified, fmt.Errorf("modified time: %w", err)
	}
	err = modified.UnmarshalBinary(data)
	return modified, err
}

// PutSite adds a site unless its realm is already present.
// Reports whether the site was added.
func (s *Storage) PutSite(site Site) (bool, error) {
	var added bool
	err := s.db.Update(func(tx *bolt.Tx) error {
		sites := tx.Bucket(SitesBucket)
		if sites == nil {
			return fmt.Errorf("sites bucket not found")
		}
		key := []byte(site.Realm)
		if sites.Get(key) != nil {
			return nil
		}
		data, err := json.Marshal(site)
		if err != nil {
			return err
		}
		if err := sites.Put(key, data); err != nil {
			return err
		}
		added = true
		return touch(tx)
	})
	return added, err
}

// DeleteSite removes a site. Reports whether it existed.
func (s *Storage) DeleteSite(realm string) (bool, error) {
	var deleted bool
	err := s.db.Update(func(tx *bolt.Tx) error {
		sites := tx.Bucket(SitesBucket)
		if sites == nil {
			return fmt.Errorf("sites bucket not found")
		}
		key := []byte(realm)
		if sites.Get(key) == nil {
			return nil
		}
		if err := sites.Delete(key); err != nil {
			return err
		}
		deleted = true
		return touch(tx)
	})
	return deleted, err
}

// GetSite returns a single site, or nil when the realm is not registered
func (s *Storage) GetSite(realm string) (*Site, error) {
	var site *Site
	err := s.db.View(func(tx *bolt.Tx) error {
		sites := tx.Bucket(SitesBucket)
		if sites == nil {
			return fmt.Errorf("sites bucket not found")
		}
		data := sites.Get([]byte(realm))
		if data == nil {
			return nil
		}
		site = &Site{}
		return json.Unmarshal(data, site)
	})
	return site, err
}

// GetSites returns all sites ordered by realm
func (s *Storage) GetSites() ([]Site, error) {
	var list []Site
	err := s.db.View(func(tx *bolt.Tx) error {
		sites := tx.Bucket(SitesBucket)
		if sites == nil {
			return fmt.Errorf("sites bucket not found")
		}
		return sites.ForEach(func(k, v []byte) error {
			var site Site
			if err := json.Unmarshal(v, &site); err != nil {
				return fmt.Errorf("site %s: %w", k, err)
			}
			list = append(list, site)
			return nil
		})
	})
	return list, err
}

func (s *Storage) put(bucket, key, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return fmt.Errorf("%s bucket not found", bucket)
		}
		return b.Put(key, value)
	})
}

func (s *Storage) get(bucket, key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return fmt.Errorf("%s bucket not found", bucket)
		}
		value = b.Get(key)
		if value == nil {
			return ErrNotFound
		}
		// Make a copy since the slice is only valid during the transaction
		value = append([]byte(nil), value...)
		return nil
	})
	return value, err
}

func touch(tx *bolt.Tx) error {
	config := tx.Bucket(ConfigBucket)
	if config == nil {
		return nil
	}
	modified, _ := time.Now().MarshalBinary()
	return config.Put(ConfigModified, modified)
}

// Compact creates a compacted copy of the database, removing unused space.
// This is useful after removing many sites.
func (s *Storage) Compact() error {
	if s.db == nil {
		return ErrClosed
	}
	srcPath := s.path
	tmpPath := srcPath + ".compact"

	dst, err := bolt.Open(tmpPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	// Copy all buckets
	err = s.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})

	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}
	s.db = nil

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)

	return s.reopen()
}

func (s *Storage) reopen() error {
	db, err := bolt.Open(s.path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}
	s.db = db
	return nil
}
