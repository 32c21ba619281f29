package store

import (
	"os"
	"time"
)

// acquireLock takes an advisory, cooperative lock on path by creating a
// sidecar ".lock" file exclusively, retrying briefly on contention. No
// library in the dependency pool offers cross-process file locking (the
// ecosystem's usual choice, gofrs/flock, is absent throughout), so this
// is the one ambient concern built on the standard library alone — see
// DESIGN.md. It only protects against other processes built on this same
// primitive; it is not an OS-level mandatory lock.
func acquireLock(path string) (unlock func(), err error) {
	lockPath := path + ".lock"

	const (
		maxAttempts = 50
		retryDelay  = 20 * time.Millisecond
	)

	var f *os.File
	for attempt := 0; attempt < maxAttempts; attempt++ {
		f, err = os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return nil, err
		}
		time.Sleep(retryDelay)
	}
	if err != nil {
		return nil, err
	}
	f.Close()

	return func() {
		os.Remove(lockPath)
	}, nil
}
