// Package restore implements manifest-driven restoration: for each file
// record it streams the file's chunks, in offset order, into a freshly
// materialized file, and recreates recorded symlinks verbatim.
package restore

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/WebFirstLanguage/hoardback/pkg/blobstore"
	"github.com/WebFirstLanguage/hoardback/pkg/config"
	"github.com/WebFirstLanguage/hoardback/pkg/content"
)

// Engine restores a repository's manifest into Config.OutputPath. Store
// reads chunks from the content-addressed repository; Output assembles
// restored files under Config.OutputPath via its Writer capability.
type Engine struct {
	Store  content.BlobStore
	Output content.BlobStore
	Config config.Config
	Logger *logrus.Logger

	// Manifest, if set, is used instead of loading Config.InputPath's
	// manifest again. Callers that already had to load the manifest to
	// decide how to wrap Store (e.g. to check Codec) can hand it over
	// here rather than paying for a second decode.
	Manifest *content.Manifest
}

// NewEngine constructs a restore Engine. logger may be nil, in which
// case the standard logrus logger is used. output is the BlobStore that
// restored files are written through (its Writer assembles each file
// chunk-by-chunk); if nil, a plain LocalFS rooted at cfg.OutputPath is
// used.
func NewEngine(store content.BlobStore, output content.BlobStore, cfg config.Config, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if output == nil {
		output = blobstore.NewLocalFS(cfg.OutputPath)
	}
	return &Engine{Store: store, Output: output, Config: cfg, Logger: logger}
}

// Run recreates every file and symlink described by the manifest at
// Config.InputPath under Config.OutputPath. If Manifest was already set
// by the caller, it is reused instead of being loaded again.
func (e *Engine) Run(ctx context.Context) error {
	manifest := e.Manifest
	if manifest == nil {
		var err error
		manifest, err = content.LoadManifest(e.Config.InputPath)
		if err != nil {
			return err
		}
	}

	threads := e.Config.Threads
	if threads < 1 {
		threads = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, threads)

	for _, rec := range manifest.Files {
		rec := rec
		select {
		case sem <- struct{}{}:
		case <-gctx.Done():
			return g.Wait()
		}
		g.Go(func() error {
			defer func() { <-sem }()
			return e.restoreFile(rec)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for _, sym := range manifest.Symlinks {
		if err := e.restoreSymlink(sym); err != nil {
			return err
		}
	}

	e.Logger.WithField("files", len(manifest.Files)).WithField("symlinks", len(manifest.Symlinks)).Info("restore complete")
	return nil
}

// relTarget strips every leading '/' from a recorded (slash-separated) path,
// so an absolute-looking path from a manifest (e.g. "/etc/hosts") is
// always restored relative to OutputPath rather than escaping it.
func relTarget(p string) string {
	return strings.TrimLeft(p, "/")
}

func (e *Engine) restoreFile(rec *content.FileRecord) error {
	key := relTarget(rec.Path)
	w, err := e.Output.Writer(key)
	if err != nil {
		return content.NewIoError("opening destination for "+rec.Path, err)
	}

	for _, fc := range rec.SortedChunks() {
		data, err := e.Store.Read(content.HashPath(fc.Digest))
		if err != nil {
			w.Close()
			return content.NewIoError("reading chunk "+string(fc.Digest), err)
		}
		if _, err := w.Write(data); err != nil {
			w.Close()
			return content.NewIoError("writing to "+rec.Path, err)
		}
	}

	if err := w.Close(); err != nil {
		return content.NewIoError("closing "+rec.Path, err)
	}

	e.Logger.WithField("path", rec.Path).Debug("restored file")
	return nil
}

func (e *Engine) restoreSymlink(sym content.Symlink) error {
	dest := filepath.Join(e.Config.OutputPath, filepath.FromSlash(relTarget(sym.From)))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return content.NewIoError("creating parent directory for symlink "+dest, err)
	}
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return content.NewIoError("clearing existing entry at "+dest, err)
	}
	if err := os.Symlink(sym.To, dest); err != nil {
		return content.NewIoError("creating symlink "+dest, err)
	}
	return nil
}
