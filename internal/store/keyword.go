package store

import (
	"context"
)

// KeywordStore remembers the last submitted search keyword
type KeywordStore struct {
	kv KeyValue
}

// NewKeywordStore creates a keyword store on top of kv
func NewKeywordStore(kv KeyValue) *KeywordStore {
	return &KeywordStore{kv: kv}
}

// Save persists keyword as the last used one
func (s *KeywordStore) Save(ctx context.Context, keyword string) error {
	return s.kv.Put(ctx, KeywordKey, keyword)
}

// Load returns the last used keyword, or found=false if none was saved
func (s *KeywordStore) Load(ctx context.Context) (keyword string, found bool, err error) {
	return s.kv.Get(ctx, KeywordKey)
}
