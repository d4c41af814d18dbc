package di

type Bucket string
type Prefix string
type SkipRegionCheck bool

// Option is a function that configures the dependency injection container.
type Option func(*options)

func WithBucket(bucket string) Option {
	return func(opts *options) {
		opts.bucket = Bucket(bucket)
	}
}

func WithPrefix(prefix string) Option {
	return func(opts *options) {
		opts.prefix = Prefix(prefix)
	}
}

func WithSkipRegionCheck(skip bool) Option {
	return func(opts *options) {
		opts.skipRegionCheck = skip
	}
}

// WithProviders adds constructor functions to the dependency injection container.
// Each provider should be a constructor function that returns one or more values.
// Providers can declare dependencies as function parameters, which will be
// automatically resolved by the container.
//
// Example:
//
//	WithProviders(
//	    func() *Clock { return &Clock{} },
//	    func(c *Clock) *Service { return &Service{Clock: c} },
//	)
func WithProviders(providers ...any) Option {
	return func(opts *options) {
		opts.providers = append(opts.providers, providers...)
	}
}

type options struct {
	bucket          Bucket
	prefix          Prefix
	providers       []any
	skipRegionCheck bool
}
