// Package backup implements the directory-walking backup pass: it loads
// any prior manifest, chunks every regular file it encounters, records
// symlinks verbatim, and persists the resulting manifest only once the
// whole tree has been walked successfully.
package backup

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/WebFirstLanguage/hoardback/pkg/config"
	"github.com/WebFirstLanguage/hoardback/pkg/content"
)

// Engine runs one backup pass against a repository root.
type Engine struct {
	Store  content.BlobStore
	Config config.Config
	Logger *logrus.Logger

	// Codec, if set, is recorded on the manifest so a later restore
	// knows which compression codec (if any) blobs were written with.
	Codec string

	// UseJSONManifest selects the text manifest encoding on save;
	// otherwise the compact MessagePack form is used.
	UseJSONManifest bool
}

// NewEngine constructs a backup Engine. logger may be nil, in which case
// the standard logrus logger is used.
func NewEngine(store content.BlobStore, cfg config.Config, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{Store: store, Config: cfg, Logger: logger}
}

// fileTask is one regular file discovered during the walk, queued for
// chunking by a worker.
type fileTask struct {
	absPath string
	relPath string
}

// Run walks Config.InputPath, chunking regular files and recording
// symlinks, then persists the resulting manifest under Config.OutputPath.
// A prior manifest at the output root, if present, seeds the chunk index
// so unchanged content is never rewritten.
func (e *Engine) Run(ctx context.Context) (*content.Manifest, error) {
	manifest, err := content.LoadManifest(e.Config.OutputPath)
	if err != nil {
		return nil, err
	}

	index := content.NewChunkIndex()
	manifest.SeedChunkIndex(index)

	chunker := content.NewFileChunker(e.Store, index, content.ChunkSizeParams{
		MinSize: e.Config.MinSize,
		AvgSize: e.Config.AverageSize,
		MaxSize: e.Config.MaxSize,
	})

	tasks := make(chan fileTask)
	results := make(chan *content.FileRecord)

	g, gctx := errgroup.WithContext(ctx)

	threads := e.Config.Threads
	if threads < 1 {
		threads = 1
	}
	for i := 0; i < threads; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case t, ok := <-tasks:
					if !ok {
						return nil
					}
					rec, err := chunker.ChunkFile(t.absPath)
					if err != nil {
						return err
					}
					rec.Path = t.relPath
					select {
					case results <- rec:
					case <-gctx.Done():
						return gctx.Err()
					}
				}
			}
		})
	}

	walkErrCh := make(chan error, 1)
	go func() {
		walkErrCh <- e.walk(gctx, e.Config.InputPath, manifest, tasks)
	}()

	doneCh := make(chan struct{})
	go func() {
		for rec := range results {
			manifest.PutFile(rec)
			e.Logger.WithField("path", rec.Path).Debug("backed up file")
		}
		close(doneCh)
	}()

	walkErr := <-walkErrCh
	close(tasks)

	waitErr := g.Wait()
	close(results)
	<-doneCh

	if walkErr != nil {
		return nil, walkErr
	}
	if waitErr != nil {
		return nil, waitErr
	}

	manifest.SyncChunkIndex(index)
	manifest.Codec = e.Codec

	if err := content.SaveManifest(e.Config.OutputPath, manifest, e.UseJSONManifest); err != nil {
		return nil, err
	}

	e.Logger.WithField("files", len(manifest.Files)).WithField("chunks", len(manifest.ChunkMap)).Info("backup complete")
	return manifest, nil
}

// walk traverses root, recording symlinks on manifest directly (a
// single-threaded, ordering-free operation) and feeding regular files
// into tasks for the worker pool to chunk. Sends respect ctx so a
// failed worker unwinds the walk instead of deadlocking on a full
// unbuffered channel with no remaining readers.
func (e *Engine) walk(ctx context.Context, root string, manifest *content.Manifest, tasks chan<- fileTask) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return content.NewIoError("walking "+path, err)
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return content.NewIoError("computing relative path for "+path, err)
		}
		rel = filepath.ToSlash(rel)

		if d.Type()&os.ModeSymlink != 0 {
			target, err := os.Readlink(path)
			if err != nil {
				return content.NewIoError("reading symlink "+path, err)
			}
			manifest.AddSymlink(content.Symlink{From: rel, To: target})
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		select {
		case tasks <- fileTask{absPath: path, relPath: rel}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}
