// Package main implements the rasm assembler command.
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/moseschmiedel/masm/internal/cli"
	"github.com/moseschmiedel/masm/internal/config"
	"github.com/moseschmiedel/masm/internal/fileprocessor"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"github.com/tebeka/atexit"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

const (
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx := app.Context()

	opts, asmOptions, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Flags)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			if usageErr.Help() {
				usageErr.ShowUsage()
				atexit.Exit(0)
			}
			logger.Error(usageErr.Error())
			usageErr.ShowUsage()
		} else {
			logger.Error(err.Error())
		}
		atexit.Exit(exitUsage)
	}

	if opts.Version {
		fmt.Printf("rasm version %s\n", buildinfo.Version(version, commit, date))
		atexit.Exit(0)
	}

	logger := config.CreateLogger(opts.Flags)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	processor := fileprocessor.New(logger)
	atexit.Register(processor.Cleanup)

	if err := processor.ProcessFile(ctx, opts, asmOptions); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			atexit.Exit(exitFailure)
		}
		logErrors(logger, err)
		atexit.Exit(exitFailure)
	}

	atexit.Exit(0)
}

// logErrors logs every error of a joined error on its own line.
func logErrors(logger *log.Logger, err error) {
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		logger.Error("Assembling failed", log.Err(err))
		return
	}
	for _, e := range joined.Unwrap() {
		logger.Error("Assembling failed", log.Err(e))
	}
}
