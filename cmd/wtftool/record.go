package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/evilaliv3/tracing-framework/pkg/wtf"
	"github.com/evilaliv3/tracing-framework/pkg/wtf/event"
	"github.com/evilaliv3/tracing-framework/pkg/wtf/platform"
)

var (
	recordCmd = &cobra.Command{
		Use:   "record",
		Short: "Run an instrumented demo workload and write a trace",
		RunE: func(_ *cobra.Command, args []string) error {
			return runRecord()
		},
	}

	recordOutput     string
	recordConfigPath string
	recordThreads    int
	recordIterations int
)

func init() {
	recordCmd.Flags().StringVarP(&recordOutput, "output", "o", "", "trace output path (default derived from the trace id)")
	recordCmd.Flags().StringVarP(&recordConfigPath, "config", "c", "", "path to yaml config")
	recordCmd.Flags().IntVar(&recordThreads, "threads", 3, "number of worker threads")
	recordCmd.Flags().IntVar(&recordIterations, "iterations", 10, "iterations per worker")
}

// The demo workload's instrumentation, declared once like any real call
// site would.
var (
	evLoop       = wtf.NewScopedEvent2[wtf.Int32, wtf.Int32]("Demo#Loop: i, limit")
	evInnerLoop  = wtf.NewScopedEvent0("Demo#InnerLoop")
	evEveryThird = wtf.NewEvent1[wtf.Int32]("Demo#EveryThird: i")
	evWorkerTag  = wtf.NewEvent1[wtf.Ascii]("Demo#Worker: name")
)

func runRecord() error {
	l, err := newLogger()
	if err != nil {
		return err
	}
	defer func() {
		_ = l.Sync()
	}()

	rt := wtf.GetRuntime()

	conf := &wtf.Config{}
	if recordConfigPath != "" {
		conf, err = wtf.LoadConfig(recordConfigPath)
		if err != nil {
			return err
		}
	}
	rt.Configure(wtf.WithLogger(l), wtf.WithConfig(conf))

	output := recordOutput
	if output == "" {
		output = fmt.Sprintf("trace-%s.wtf-trace", rt.TraceID())
	}

	l.Info("Recording demo workload",
		zap.Int("threads", recordThreads),
		zap.Int("iterations", recordIterations),
	)

	var g errgroup.Group
	for w := 0; w < recordThreads; w++ {
		name := fmt.Sprintf("worker-%d", w)
		g.Go(func() error {
			rt.EnableCurrentThread(name)
			defer rt.DisableCurrentThread()

			evWorkerTag.Invoke(wtf.Ascii(name))
			for i := 0; i < recordIterations; i++ {
				if buf := platform.CurrentThreadBuffer(); buf != nil {
					event.FrameStart(buf, uint32(i))
				}

				s := wtf.NewScope2(evLoop)
				s.Enter(wtf.Int32(i), wtf.Int32(recordIterations))

				if i%3 == 0 {
					evEveryThird.Invoke(wtf.Int32(i))
				}
				for j := 0; j < 5; j++ {
					inner := wtf.NewScope0(evInnerLoop)
					inner.Enter()
					time.Sleep(50 * time.Microsecond)
					inner.Leave()
				}

				s.Leave()

				if buf := platform.CurrentThreadBuffer(); buf != nil {
					event.FrameEnd(buf, uint32(i))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := rt.SaveToFile(output); err != nil {
		return err
	}

	if st, err := os.Stat(output); err == nil {
		l.Info("Wrote trace",
			zap.String("path", output),
			zap.String("size", humanize.Bytes(uint64(st.Size()))),
		)
	}
	return nil
}
