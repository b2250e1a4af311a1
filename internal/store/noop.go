package store

import "context"

// NoopStore persists nothing. Every Get misses.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) Name() string                                    { return "none" }
func (n *NoopStore) Get(_ context.Context, _ string) ([]byte, error) { return nil, ErrNotFound }
func (n *NoopStore) Put(_ context.Context, _ string, _ []byte) error { return nil }
func (n *NoopStore) Delete(_ context.Context, _ string) error        { return nil }
func (n *NoopStore) Close() error                                    { return nil }
