package blobstore

import (
	"io"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/WebFirstLanguage/hoardback/pkg/content"
)

// Retrying wraps a content.BlobStore with bounded exponential-backoff
// retries on transient errors. Permanent errors (not-found, permission
// denied) surface immediately. Mirrors the RetryLayer the original
// implementation installs over its object-storage operator.
type Retrying struct {
	Inner  content.BlobStore
	Logger *logrus.Logger
	// MaxElapsed bounds total retry time per call; zero selects a
	// three-attempt default.
	MaxElapsed time.Duration
}

// NewRetrying wraps inner with the default retry policy.
func NewRetrying(inner content.BlobStore, logger *logrus.Logger) *Retrying {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Retrying{Inner: inner, Logger: logger, MaxElapsed: 2 * time.Second}
}

func (r *Retrying) policy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxElapsedTime = r.MaxElapsed
	if r.MaxElapsed == 0 {
		return backoff.WithMaxRetries(b, 2)
	}
	return b
}

// isPermanent reports errors that a retry can never fix. It checks the
// package's own IsNotFound rather than os.IsNotExist: a LocalFS miss
// surfaces as *notFoundError (blobstore.go), which os.IsNotExist does
// not recognize since it only unwraps *PathError/*LinkError/*SyscallError.
func isPermanent(err error) bool {
	return IsNotFound(err) || os.IsPermission(err)
}

// Write implements content.BlobStore.
func (r *Retrying) Write(key string, data []byte) error {
	attempt := 0
	op := func() error {
		attempt++
		err := r.Inner.Write(key, data)
		if err != nil && isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	err := backoff.Retry(op, r.policy())
	if err != nil && attempt > 1 {
		r.Logger.WithField("key", key).WithField("attempts", attempt).WithError(err).Warn("blobstore write failed after retries")
	}
	return err
}

// Read implements content.BlobStore.
func (r *Retrying) Read(key string) ([]byte, error) {
	var data []byte
	attempt := 0
	op := func() error {
		attempt++
		var err error
		data, err = r.Inner.Read(key)
		if err != nil && isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	err := backoff.Retry(op, r.policy())
	if err != nil && attempt > 1 {
		r.Logger.WithField("key", key).WithField("attempts", attempt).WithError(err).Warn("blobstore read failed after retries")
	}
	return data, err
}

// Writer implements content.BlobStore. Streaming writers are not
// retried: once bytes start flowing the caller owns failure recovery.
func (r *Retrying) Writer(key string) (io.WriteCloser, error) {
	return r.Inner.Writer(key)
}
