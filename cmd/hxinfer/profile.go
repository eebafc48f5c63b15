package main

import (
	"github.com/spf13/cobra"

	"hxinfer/internal/prof"
)

var profSession *prof.Session

func startProfiling(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	var err error
	if opts.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return err
	}
	if opts.Mem, err = flags.GetString("mem-profile"); err != nil {
		return err
	}
	if opts.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return err
	}
	if !opts.Enabled() {
		return nil
	}
	profSession, err = prof.Start(opts)
	return err
}

func stopProfiling() error {
	err := profSession.Stop()
	profSession = nil
	return err
}
