package dictionary

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Backend names accepted by Open.
const (
	BackendBuiltin = "builtin"
	BackendFile    = "file"
	BackendSQL     = "sql"
	BackendRedis   = "redis"
)

// Options selects and configures a dictionary backend.
type Options struct {
	Backend string

	// Path is the word list file for the file backend.
	Path  string
	Watch bool

	SQLDriver string
	SQLDSN    string

	RedisAddr string
	RedisKey  string
}

// Open builds the dictionary described by opts. Failures are returned as
// *InitError.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (Dictionary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	backend := opts.Backend
	if backend == "" {
		backend = BackendBuiltin
	}

	var (
		dict Dictionary
		err  error
	)
	switch backend {
	case BackendBuiltin:
		dict = Builtin()
	case BackendFile:
		dict, err = openFile(opts, logger)
	case BackendSQL:
		dict, err = openSQL(ctx, opts)
	case BackendRedis:
		dict, err = OpenRedis(ctx, opts.RedisAddr, opts.RedisKey)
	default:
		err = fmt.Errorf("unknown backend %q", backend)
	}
	if err != nil {
		return nil, &InitError{Backend: backend, Err: err}
	}

	logger.Info("dictionary ready", zap.String("backend", backend))
	return dict, nil
}

func openFile(opts Options, logger *zap.Logger) (Dictionary, error) {
	if opts.Path == "" {
		return nil, errors.New("no word list path configured")
	}
	if opts.Watch {
		return WatchFile(opts.Path, logger)
	}
	return LoadFile(opts.Path)
}

func openSQL(ctx context.Context, opts Options) (Dictionary, error) {
	driver := opts.SQLDriver
	if driver == "" {
		driver = DriverSQLite
	}
	if opts.SQLDSN == "" {
		return nil, errors.New("no database dsn configured")
	}
	return OpenSQL(ctx, driver, opts.SQLDSN)
}
