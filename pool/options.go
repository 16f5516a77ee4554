package pool

import (
	"time"

	"github.com/micro/go-pool/logger"
)

type Options struct {
	// Name identifies the pool in errors, logs and metrics.
	Name string
	// MinSize is the eagerly maintained connection floor.
	MinSize int
	// MaxSize is the hard cap on tracked plus in-flight connections.
	MaxSize int
	// Timeout is the maximum time Get blocks for a connection.
	// Zero means block until the context is done.
	Timeout time.Duration
	// MaxLifetime retires connections older than this. Zero disables.
	MaxLifetime time.Duration
	// IdleTimeout retires connections idle longer than this. Zero
	// disables.
	IdleTimeout time.Duration
	// ValidateOnBorrow re-validates idle connections before leasing.
	ValidateOnBorrow bool
	// TestOnReturn validates connections when released.
	TestOnReturn bool
	// FIFO serves waiting callers in arrival order. When false the most
	// recent waiter is served first.
	FIFO bool
	// Logger for pool lifecycle events.
	Logger logger.Logger
}

type Option func(*Options)

// Name sets the pool name.
func Name(n string) Option {
	return func(o *Options) {
		o.Name = n
	}
}

// MinSize sets the connection floor.
func MinSize(n int) Option {
	return func(o *Options) {
		o.MinSize = n
	}
}

// MaxSize sets the connection cap.
func MaxSize(n int) Option {
	return func(o *Options) {
		o.MaxSize = n
	}
}

// Timeout sets the maximum wait for Get.
func Timeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// MaxLifetime sets the connection lifetime bound.
func MaxLifetime(d time.Duration) Option {
	return func(o *Options) {
		o.MaxLifetime = d
	}
}

// IdleTimeout sets the connection idle bound.
func IdleTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.IdleTimeout = d
	}
}

// ValidateOnBorrow enables validation before leasing an idle connection.
func ValidateOnBorrow(b bool) Option {
	return func(o *Options) {
		o.ValidateOnBorrow = b
	}
}

// TestOnReturn enables validation on release.
func TestOnReturn(b bool) Option {
	return func(o *Options) {
		o.TestOnReturn = b
	}
}

// FIFO sets the waiter fairness mode.
func FIFO(b bool) Option {
	return func(o *Options) {
		o.FIFO = b
	}
}

// Logger sets the logger.
func Logger(l logger.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

func newOptions(opts ...Option) Options {
	options := Options{
		Name:    "pool",
		MinSize: 0,
		MaxSize: 10,
		Timeout: 30 * time.Second,
		FIFO:    true,
		Logger:  logger.DefaultLogger,
	}
	for _, o := range opts {
		o(&options)
	}
	return options
}
