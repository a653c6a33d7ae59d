package kv

import (
	"context"
	"errors"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/pluce/openlink/internal/olerr"
)

// jetStreamStore adapts a jetstream.KeyValue bucket to the Store interface.
type jetStreamStore struct {
	kv jetstream.KeyValue
}

// NewJetStream wraps an already-created JetStream KV bucket.
func NewJetStream(bucket jetstream.KeyValue) Store {
	return &jetStreamStore{kv: bucket}
}

func (s *jetStreamStore) Get(ctx context.Context, key string) ([]byte, uint64, error) {
	entry, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, 0, notFound(key)
		}
		return nil, 0, olerr.Transport("kv get failed", err)
	}
	return entry.Value(), entry.Revision(), nil
}

func (s *jetStreamStore) Put(ctx context.Context, key string, value []byte) (uint64, error) {
	rev, err := s.kv.Put(ctx, key, value)
	if err != nil {
		return 0, olerr.Transport("kv put failed", err)
	}
	return rev, nil
}

func (s *jetStreamStore) Update(ctx context.Context, key string, value []byte, expectedRevision uint64) (uint64, error) {
	rev, err := s.kv.Update(ctx, key, value, expectedRevision)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return 0, conflict(key)
		}
		return 0, olerr.Transport("kv update failed", err)
	}
	return rev, nil
}

func (s *jetStreamStore) Delete(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil {
		return olerr.Transport("kv delete failed", err)
	}
	return nil
}

func (s *jetStreamStore) Keys(ctx context.Context) ([]string, error) {
	lister, err := s.kv.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, olerr.Transport("kv list keys failed", err)
	}
	var keys []string
	for k := range lister.Keys() {
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *jetStreamStore) PurgeAll(ctx context.Context) error {
	keys, err := s.Keys(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.kv.Purge(ctx, k); err != nil {
			return olerr.Transport("kv purge failed", err)
		}
	}
	return nil
}
