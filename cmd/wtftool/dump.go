package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"

	"github.com/evilaliv3/tracing-framework/pkg/wtf/wire"
)

var (
	dumpCmd = &cobra.Command{
		Use:   "dump <trace>...",
		Short: "Print the contents of trace files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			for _, path := range args {
				if err := dumpTrace(path); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}
			return nil
		},
	}

	dumpEvents bool
)

func init() {
	dumpCmd.Flags().BoolVar(&dumpEvents, "events", false, "print every event record")
}

func dumpTrace(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	trace, err := wire.Read(f)
	if err != nil {
		return err
	}

	if st, err := os.Stat(path); err == nil {
		fmt.Printf("%s: %s\n", path, humanize.Bytes(uint64(st.Size())))
	}

	fmt.Printf("definitions (%d):\n", len(trace.Definitions))
	for _, d := range trace.Definitions {
		if d.Args != "" {
			fmt.Printf("  %4d %s(%s)\n", d.WireID, d.Name, d.Args)
		} else {
			fmt.Printf("  %4d %s\n", d.WireID, d.Name)
		}
	}

	for i := range trace.Threads {
		thread := &trace.Threads[i]
		fmt.Printf("thread %d %q: %s events", thread.ID, thread.Name, humanize.Comma(int64(len(thread.Events))))
		if thread.Overflow {
			fmt.Printf(" (overflowed, tail dropped)")
		}
		fmt.Println()

		printEventSummary(thread)
		if dumpEvents {
			printEvents(thread)
		}
	}
	return nil
}

func printEventSummary(thread *wire.Thread) {
	counts := make(map[string]int)
	for _, ev := range thread.Events {
		counts[ev.Name]++
	}

	type eventCount struct {
		name  string
		count int
	}
	summary := make([]eventCount, 0, len(counts))
	for name, count := range counts {
		summary = append(summary, eventCount{name, count})
	}
	slices.SortFunc(summary, func(a, b eventCount) int {
		if a.count != b.count {
			return b.count - a.count
		}
		return strings.Compare(a.name, b.name)
	})

	for _, e := range summary {
		fmt.Printf("  %6d x %s\n", e.count, e.name)
	}
}

func printEvents(thread *wire.Thread) {
	for _, ev := range thread.Events {
		fmt.Printf("  [%10d] %s", ev.Time, ev.Name)
		for _, a := range ev.Args {
			if a.Type == "ascii" {
				fmt.Printf(" %s=%q", a.Name, a.Str)
			} else {
				fmt.Printf(" %s=%d", a.Name, a.Int())
			}
		}
		fmt.Println()
	}
}
