package repository

import "context"

// Resolver picks the state partition that serves a request.
type Resolver interface {
	For(ctx context.Context) StateRepository
}

type deviceKey struct{}

// WithDevice returns a context carrying the browser device id.
func WithDevice(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceKey{}, deviceID)
}

// DeviceFromContext returns the device id stored on ctx, if any.
func DeviceFromContext(ctx context.Context) string {
	id, _ := ctx.Value(deviceKey{}).(string)
	return id
}

// deviceResolver partitions inner by the device id on the context.
type deviceResolver struct {
	inner StateRepository
}

// NewDeviceResolver returns a Resolver that scopes inner to the device on
// the request context. Requests without a device use inner directly.
func NewDeviceResolver(inner StateRepository) Resolver {
	return &deviceResolver{inner: inner}
}

func (r *deviceResolver) For(ctx context.Context) StateRepository {
	deviceID := DeviceFromContext(ctx)
	if deviceID == "" {
		return r.inner
	}
	return Scoped(r.inner, DevicePrefix(deviceID))
}

// Fixed returns a Resolver that always serves repo.
func Fixed(repo StateRepository) Resolver {
	return fixedResolver{repo: repo}
}

type fixedResolver struct {
	repo StateRepository
}

func (r fixedResolver) For(context.Context) StateRepository {
	return r.repo
}
