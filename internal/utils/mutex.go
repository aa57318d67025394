package utils

import "sync"

// The netCDF C library keeps global state and is not safe for concurrent use.
var netcdfMu sync.Mutex

func WithNetCDF(fn func() error) error {
	netcdfMu.Lock()
	defer netcdfMu.Unlock()
	return fn()
}

var gdalMu sync.Mutex

func WithGDAL(fn func() error) error {
	gdalMu.Lock()
	defer gdalMu.Unlock()
	return fn()
}
