package main

import (
	"github.com/spf13/cobra"

	"github.com/WebFirstLanguage/hoardback/internal/restore"
	"github.com/WebFirstLanguage/hoardback/pkg/blobstore"
	"github.com/WebFirstLanguage/hoardback/pkg/config"
	"github.com/WebFirstLanguage/hoardback/pkg/content"
)

func newRestoreCmd() *cobra.Command {
	var (
		inputPath  string
		outputPath string
		threads    int
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Materialize a repository's files into a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			cfg.InputPath = inputPath
			cfg.OutputPath = outputPath
			cfg.Threads = threads
			cfg.LogLevel = logLevel

			logger := newLogger(logLevel)

			var store content.BlobStore = blobstore.NewLocalFS(inputPath)
			store = blobstore.NewRetrying(store, logger)

			manifest, err := content.LoadManifest(inputPath)
			if err != nil {
				return err
			}
			if manifest.Codec == blobstore.ZstdCodec {
				compressing, err := blobstore.NewCompressing(store)
				if err != nil {
					return err
				}
				defer compressing.Close()
				store = compressing
			}

			engine := restore.NewEngine(store, nil, cfg, logger)
			engine.Manifest = manifest
			return engine.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&inputPath, "input-path", "", "repository directory to read (required)")
	cmd.Flags().StringVar(&outputPath, "output-path", "", "directory to restore into (required)")
	cmd.Flags().IntVar(&threads, "threads", config.DefaultThreads, "number of worker goroutines")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	cmd.MarkFlagRequired("input-path")
	cmd.MarkFlagRequired("output-path")

	return cmd
}
