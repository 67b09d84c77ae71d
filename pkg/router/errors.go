package router

import "errors"

// Sentinel errors for scan and mount operations.
var (
	// ErrNilRouter indicates Mount was called without a router.
	ErrNilRouter = errors.New("router is nil")
	// ErrNilLoader indicates Mount was called without a handler loader.
	ErrNilLoader = errors.New("loader is nil")
	// ErrIrregularEntry indicates a directory entry that is neither a regular
	// file nor a directory: a device, a socket, a broken symlink or a symlink
	// to one of its own ancestors.
	ErrIrregularEntry = errors.New("neither a file nor a directory")
	// ErrHandlerNotFound indicates a route file with no registered handler.
	ErrHandlerNotFound = errors.New("no handler registered")
)
