package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/bkgoodman/superpwdhash/internal/crypto"
	"github.com/bkgoodman/superpwdhash/internal/logger"
	"github.com/bkgoodman/superpwdhash/internal/pwdhash"
	"github.com/bkgoodman/superpwdhash/internal/realm"
	"github.com/bkgoodman/superpwdhash/internal/storage"
)

const (
	DirPermSecure = 0700 // Directory: owner rwx only
	checkString   = "superpwdhash-master-check"
)

var (
	ErrNotInitialized   = errors.New("site registry not initialized")
	ErrAlreadyExists    = errors.New("master password verifier already exists")
	ErrWrongPassword    = errors.New("wrong master password")
	ErrPasswordRequired = errors.New("master password required")
)

// Keeper manages the site registry and the master password verifier
type Keeper struct {
	path       string
	db         *storage.Storage
	iterations int // PBKDF2 iterations for Init; 0 means crypto.DefaultIters
	checks     int // verifier checks run, one PBKDF2 each
}

// New creates a Keeper for the registry file at path. Nothing is opened
// or created until an operation needs it.
func New(path string) *Keeper {
	return &Keeper{path: path}
}

// Path returns the registry file path
func (k *Keeper) Path() string {
	return k.path
}

// Close releases the database
func (k *Keeper) Close() error {
	if k.db == nil {
		return nil
	}
	err := k.db.Close()
	k.db = nil
	return err
}

// open returns the database, creating and initializing it when create is
// set. Without create, a missing or empty registry is ErrNotInitialized.
func (k *Keeper) open(create bool) (*storage.Storage, error) {
	if k.db != nil {
		return k.db, nil
	}

	if create {
		if err := os.MkdirAll(filepath.Dir(k.path), DirPermSecure); err != nil {
			return nil, fmt.Errorf("failed to create registry directory: %w", err)
		}
	} else if _, err := os.Stat(k.path); err != nil {
		return nil, ErrNotInitialized
	}

	db, err := storage.Open(k.path)
	if err != nil {
		return nil, err
	}

	if create {
		if err := db.Initialize(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	} else {
		initialized, err := db.IsInitialized()
		if err != nil || !initialized {
			db.Close()
			return nil, ErrNotInitialized
		}
	}

	k.db = db
	return db, nil
}

// Init stores a verifier for password so later typos are caught.
// The registry is created if needed; existing sites are kept.
func (k *Keeper) Init(password []byte) error {
	if len(password) == 0 {
		return ErrPasswordRequired
	}

	db, err := k.open(true)
	if err != nil {
		return err
	}

	if _, err := db.GetCheck(); err == nil {
		return ErrAlreadyExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	kdf, err := crypto.NewKDF()
	if err != nil {
		return fmt.Errorf("failed to create KDF: %w", err)
	}
	if k.iterations > 0 {
		kdf.Iterations = k.iterations
	}

	if err := db.SetSalt(kdf.Salt); err != nil {
		return fmt.Errorf("failed to store salt: %w", err)
	}
	if err := db.SetIterations(uint32(kdf.Iterations)); err != nil {
		return fmt.Errorf("failed to store iterations: %w", err)
	}

	key := kdf.DeriveKey(password)
	defer crypto.ClearBytes(key)

	sealed, err := crypto.Seal(key, checkValue())
	if err != nil {
		return fmt.Errorf("failed to encrypt check value: %w", err)
	}

	if err := db.SetCheck(sealed); err != nil {
		return fmt.Errorf("failed to store check value: %w", err)
	}

	return db.UpdateModified()
}

// HasVerifier reports whether a master password verifier is stored.
// A missing registry simply has none.
func (k *Keeper) HasVerifier() (bool, error) {
	db, err := k.open(false)
	if errors.Is(err, ErrNotInitialized) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	_, err = db.GetCheck()
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// VerifyPassword checks password against the stored verifier
func (k *Keeper) VerifyPassword(password []byte) error {
	if len(password) == 0 {
		return ErrPasswordRequired
	}

	db, err := k.open(false)
	if err != nil {
		return err
	}

	sealed, err := db.GetCheck()
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotInitialized
	}
	if err != nil {
		return err
	}

	salt, err := db.GetSalt()
	if err != nil {
		return fmt.Errorf("failed to get salt: %w", err)
	}
	iterations, err := db.GetIterations()
	if err != nil {
		return fmt.Errorf("failed to get iterations: %w", err)
	}

	kdf := &crypto.KDF{
		Salt:       salt,
		Iterations: int(iterations),
	}
	k.checks++

	key := kdf.DeriveKey(password)
	defer crypto.ClearBytes(key)

	plain, err := crypto.Open(key, sealed)
	if err != nil {
		return ErrWrongPassword
	}
	defer crypto.ClearBytes(plain)

	if !crypto.ConstantTimeCompare(plain, checkValue()) {
		return ErrWrongPassword
	}

	return nil
}

// Derived is one site password produced by DeriveAll
type Derived struct {
	Realm    string
	Password string
}

// Derive verifies password when a verifier is stored, then derives the
// password for site
func (k *Keeper) Derive(ctx context.Context, password []byte, site string, params pwdhash.Params) (string, error) {
	derived, err := k.DeriveAll(ctx, password, []string{site}, params)
	if err != nil {
		return "", err
	}
	return derived[0].Password, nil
}

// DeriveAll verifies password once, then derives the password of each
// site in order
func (k *Keeper) DeriveAll(ctx context.Context, password []byte, sites []string, params pwdhash.Params) ([]Derived, error) {
	verified, err := k.unlock(password)
	if err != nil {
		return nil, err
	}

	derived := make([]Derived, 0, len(sites))
	for _, site := range sites {
		r := realm.Normalize(site)
		logger.Debug(ctx, "deriving site password",
			zap.String("realm", r),
			zap.Bool("verified", verified),
			zap.Int("length", params.Length),
		)

		// pwdhash normalizes the raw site itself
		pw, err := pwdhash.Derive(password, site, params)
		if err != nil {
			return nil, err
		}
		derived = append(derived, Derived{Realm: r, Password: pw})
	}

	return derived, nil
}

// unlock checks password against the verifier if one is stored and
// reports whether a check took place
func (k *Keeper) unlock(password []byte) (bool, error) {
	verify, err := k.HasVerifier()
	if err != nil || !verify {
		return false, err
	}
	if err := k.VerifyPassword(password); err != nil {
		return false, err
	}
	return true, nil
}

// AddSites normalizes and registers each site. Returns the realms that
// were not already present.
func (k *Keeper) AddSites(ctx context.Context, sites []string) ([]string, error) {
	db, err := k.open(true)
	if err != nil {
		return nil, err
	}

	var added []string
	now := time.Now().UTC()
	for _, site := range sites {
		r := realm.Normalize(site)
		if r == "" {
			logger.Warn(ctx, "skipping empty site")
			continue
		}

		ok, err := db.PutSite(storage.Site{Realm: r, Added: now})
		if err != nil {
			logger.Error(ctx, "failed to store site", zap.String("realm", r), zap.Error(err))
			return added, fmt.Errorf("failed to add %s: %w", r, err)
		}
		if ok {
			added = append(added, r)
		}
		logger.Debug(ctx, "add site", zap.String("realm", r), zap.Bool("new", ok))
	}

	return added, nil
}

// RemoveSites removes each site. Returns the realms actually removed.
func (k *Keeper) RemoveSites(ctx context.Context, sites []string) ([]string, error) {
	db, err := k.open(false)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, site := range sites {
		r := realm.Normalize(site)
		if r == "" {
			continue
		}

		ok, err := db.DeleteSite(r)
		if err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", r, err)
		}
		if ok {
			removed = append(removed, r)
		}
		logger.Debug(ctx, "remove site", zap.String("realm", r), zap.Bool("found", ok))
	}

	return removed, nil
}

// Sites lists the registry in realm order. A missing registry is empty.
func (k *Keeper) Sites(ctx context.Context) ([]storage.Site, error) {
	db, err := k.open(false)
	if errors.Is(err, ErrNotInitialized) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sites, err := db.GetSites()
	if err != nil {
		return nil, err
	}
	logger.Debug(ctx, "listed sites", zap.Int("count", len(sites)))
	return sites, nil
}

// Compact compacts the database to reclaim unused space
func (k *Keeper) Compact() error {
	db, err := k.open(false)
	if err != nil {
		return err
	}

	if err := db.Compact(); err != nil {
		db.Close()
		k.db = nil
		return err
	}
	return nil
}

func checkValue() []byte {
	sum := sha256.Sum256([]byte(checkString))
	return []byte(hex.EncodeToString(sum[:]))
}
