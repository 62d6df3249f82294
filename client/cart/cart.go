// Package cart holds the in-progress sale on the cashier's side. The
// cart survives restarts: every mutation is persisted as a JSON blob
// under a fixed key, and the store reloads it on construction.
package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// storageKey is the fixed key the cart blob is stored under.
const storageKey = "kasirin_cart"

// Item is one cart line.
type Item struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Persistence stores the serialized cart. Implementations must treat a
// missing key as (nil, nil), not an error.
type Persistence interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

// FilePersistence keeps each key as a JSON file in a directory.
type FilePersistence struct {
	dir string
}

// NewFilePersistence stores blobs under dir, creating it when needed.
func NewFilePersistence(dir string) *FilePersistence {
	return &FilePersistence{dir: dir}
}

func (f *FilePersistence) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FilePersistence) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func (f *FilePersistence) Save(key string, data []byte) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("cart: create dir: %w", err)
	}
	return os.WriteFile(f.path(key), data, 0o644)
}

// Store is the cart itself. Lines keep insertion order; adding an
// existing product bumps its quantity instead of appending.
type Store struct {
	mu    sync.Mutex
	items []Item
	store Persistence
}

// NewStore loads the persisted cart, if any. A nil persistence defaults
// to a file in the user cache directory.
func NewStore(p Persistence) (*Store, error) {
	if p == nil {
		dir, err := os.UserCacheDir()
		if err != nil {
			dir = os.TempDir()
		}
		p = NewFilePersistence(filepath.Join(dir, "kasirin"))
	}
	s := &Store{store: p}
	data, err := p.Load(storageKey)
	if err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.items); err != nil {
			return nil, fmt.Errorf("cart: decode: %w", err)
		}
	}
	return s, nil
}

// Add puts one unit of a product in the cart. A product already present
// gains quantity 1.
func (s *Store) Add(productID, name string, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity++
			return s.persist()
		}
	}
	s.items = append(s.items, Item{
		ProductID: productID,
		Name:      name,
		Price:     price,
		Quantity:  1,
	})
	return s.persist()
}

// Remove drops a product's line entirely.
func (s *Store) Remove(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return s.persist()
		}
	}
	return nil
}

// SetQuantity overwrites a line's quantity. Zero or negative removes the
// line.
func (s *Store) SetQuantity(productID string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(productID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity = quantity
			return s.persist()
		}
	}
	return nil
}

// Clear empties the cart. Used after a successful checkout.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return s.persist()
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Total is the sum of price times quantity over all lines.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, it := range s.items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// persist writes the cart under the fixed key. Callers hold the lock.
func (s *Store) persist() error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("cart: encode: %w", err)
	}
	if err := s.store.Save(storageKey, data); err != nil {
		return fmt.Errorf("cart: save: %w", err)
	}
	return nil
}
