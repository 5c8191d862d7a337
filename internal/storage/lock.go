package storage

import (
	"fmt"
	"os"
	"sync"
	"syscall"
)

// FileLock serializes access to one storage file across processes. The
// lock is advisory, taken with flock on a sibling .lock file, with a
// process-local mutex in front so goroutines sharing the lock queue up
// instead of racing the syscall.
type FileLock struct {
	path string

	mu   sync.Mutex
	file *os.File
}

// NewFileLock creates a lock guarding path. The flock itself is taken
// on path + ".lock".
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path + ".lock"}
}

// Lock acquires the lock, blocking until it is free.
func (l *FileLock) Lock() error {
	l.mu.Lock()
	if err := l.flock(syscall.LOCK_EX); err != nil {
		l.mu.Unlock()
		return err
	}
	return nil
}

// TryLock acquires the lock only if that needs no waiting, reporting
// whether it was taken.
func (l *FileLock) TryLock() bool {
	if !l.mu.TryLock() {
		return false
	}
	if err := l.flock(syscall.LOCK_EX | syscall.LOCK_NB); err != nil {
		l.mu.Unlock()
		return false
	}
	return true
}

// flock opens the lock file and takes an exclusive flock on it.
// Callers hold l.mu.
func (l *FileLock) flock(how int) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	if err := syscall.Flock(int(f.Fd()), how); err != nil {
		f.Close()
		return fmt.Errorf("flock %s: %w", l.path, err)
	}
	l.file = f
	return nil
}

// Unlock releases the lock and removes the lock file. Unlocking a lock
// that is not held is a no-op.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}

	err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	l.file.Close()
	os.Remove(l.path)
	l.file = nil
	l.mu.Unlock()
	return err
}
