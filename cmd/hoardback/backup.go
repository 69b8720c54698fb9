package main

import (
	"github.com/spf13/cobra"

	"github.com/WebFirstLanguage/hoardback/internal/backup"
	"github.com/WebFirstLanguage/hoardback/pkg/blobstore"
	"github.com/WebFirstLanguage/hoardback/pkg/config"
	"github.com/WebFirstLanguage/hoardback/pkg/content"
)

func newBackupCmd() *cobra.Command {
	var (
		inputPath   string
		outputPath  string
		averageSize uint32
		threads     int
		logLevel    string
		compress    bool
	)

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Chunk a directory tree into a repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.WithAverageSize(averageSize)
			cfg.InputPath = inputPath
			cfg.OutputPath = outputPath
			cfg.Threads = threads
			cfg.LogLevel = logLevel

			logger := newLogger(logLevel)

			var store content.BlobStore = blobstore.NewLocalFS(outputPath)
			store = blobstore.NewRetrying(store, logger)

			codec := ""
			if compress {
				compressing, err := blobstore.NewCompressing(store)
				if err != nil {
					return err
				}
				defer compressing.Close()
				store = compressing
				codec = blobstore.ZstdCodec
			}

			engine := backup.NewEngine(store, cfg, logger)
			engine.Codec = codec

			_, err := engine.Run(cmd.Context())
			return err
		},
	}

	cmd.Flags().StringVar(&inputPath, "input-path", "", "directory to back up (required)")
	cmd.Flags().StringVar(&outputPath, "output-path", "", "repository directory to write (required)")
	cmd.Flags().Uint32Var(&averageSize, "average-size", config.DefaultAverageSize, "target chunk size in bytes")
	cmd.Flags().IntVar(&threads, "threads", config.DefaultThreads, "number of worker goroutines")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	cmd.Flags().BoolVar(&compress, "compress", false, "compress stored chunks with zstd")
	cmd.MarkFlagRequired("input-path")
	cmd.MarkFlagRequired("output-path")

	return cmd
}
