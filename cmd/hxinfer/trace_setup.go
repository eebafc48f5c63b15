package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hxinfer/internal/trace"
)

type traceFlags struct {
	output    string
	level     string
	mode      string
	ringSize  int
	heartbeat time.Duration
}

func readTraceFlags(cmd *cobra.Command) (traceFlags, error) {
	flags := cmd.Root().PersistentFlags()
	var tf traceFlags
	var err error
	if tf.output, err = flags.GetString("trace"); err != nil {
		return tf, fmt.Errorf("failed to get trace flag: %w", err)
	}
	if tf.level, err = flags.GetString("trace-level"); err != nil {
		return tf, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	if tf.mode, err = flags.GetString("trace-mode"); err != nil {
		return tf, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	if tf.ringSize, err = flags.GetInt("trace-ring-size"); err != nil {
		return tf, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	if tf.heartbeat, err = flags.GetDuration("trace-heartbeat"); err != nil {
		return tf, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}
	return tf, nil
}

// config turns flags into a tracer config. An output without an explicit
// level traces phases; ok is false when tracing stays off.
func (tf traceFlags) config() (cfg trace.Config, ok bool, err error) {
	level, err := trace.ParseLevel(tf.level)
	if err != nil {
		return cfg, false, err
	}
	if level == trace.LevelOff {
		if tf.output == "" {
			return cfg, false, nil
		}
		level = trace.LevelPhase
	}
	mode, err := trace.ParseMode(tf.mode)
	if err != nil {
		return cfg, false, err
	}
	if tf.output != "" && mode == trace.ModeRing {
		mode = trace.ModeStream
	}
	return trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: tf.output,
		RingSize:   tf.ringSize,
		Heartbeat:  tf.heartbeat,
	}, true, nil
}

// setupTracing attaches a tracer to the command context. The returned
// cleanup stops the heartbeat and flushes the tracer.
func setupTracing(cmd *cobra.Command) (func(), error) {
	tf, err := readTraceFlags(cmd)
	if err != nil {
		return nil, err
	}
	cfg, ok, err := tf.config()
	if err != nil {
		return nil, err
	}
	if !ok {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	var heartbeat *trace.Heartbeat
	if cfg.Heartbeat > 0 {
		heartbeat = trace.StartHeartbeat(tracer, cfg.Heartbeat)
	}
	return func() {
		if heartbeat != nil {
			heartbeat.Stop()
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, nil
}
