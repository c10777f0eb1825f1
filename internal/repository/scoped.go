package repository

import "context"

// scopedRepository namespaces every key under a fixed prefix.
type scopedRepository struct {
	inner  StateRepository
	prefix string
}

// Scoped returns a repository whose keys live under prefix inside inner.
// It is used to give each browser device its own partition, so that the
// key layout within a partition matches what the browser kept locally.
func Scoped(inner StateRepository, prefix string) StateRepository {
	return &scopedRepository{inner: inner, prefix: prefix}
}

// DevicePrefix returns the partition prefix for a device id.
func DevicePrefix(deviceID string) string {
	return "device:" + deviceID + ":"
}

func (r *scopedRepository) Get(ctx context.Context, key string) ([]byte, error) {
	return r.inner.Get(ctx, r.prefix+key)
}

func (r *scopedRepository) Set(ctx context.Context, key string, value []byte) error {
	return r.inner.Set(ctx, r.prefix+key, value)
}

func (r *scopedRepository) Delete(ctx context.Context, key string) error {
	return r.inner.Delete(ctx, r.prefix+key)
}
