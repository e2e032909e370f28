//go:build sqlite_vec && cgo

package vectorindex

import (
	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

// init registers the sqlite-vec extension so a vec0 virtual table is
// available to SQLite when this build tag is enabled. Nothing creates
// or queries such a table; Index is the brute-force scan in every
// build.
func init() {
	vec.Auto()
}
