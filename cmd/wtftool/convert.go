package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/evilaliv3/tracing-framework/pkg/atomicfs"
	"github.com/evilaliv3/tracing-framework/pkg/convert"
	"github.com/evilaliv3/tracing-framework/pkg/wtf/wire"
)

var (
	convertCmd = &cobra.Command{
		Use:   "convert <trace>...",
		Short: "Convert trace files to chrome or pprof format",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runConvert(args)
		},
	}

	convertFormat string
)

func init() {
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "chrome", "output format (`chrome` or `pprof`)")
}

func runConvert(paths []string) error {
	switch convertFormat {
	case "chrome", "pprof":
	default:
		return fmt.Errorf("unknown format %q", convertFormat)
	}

	var g errgroup.Group
	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := convertTrace(path); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func convertTrace(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	trace, err := wire.Read(f)
	if err != nil {
		return err
	}

	output := outputPath(path)
	out, err := atomicfs.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Discard()
	}()

	switch convertFormat {
	case "chrome":
		err = convert.ToChrome(trace, out)
	case "pprof":
		prof, perr := convert.ToPprof(trace)
		if perr != nil {
			err = perr
			break
		}
		err = prof.Write(out)
	}
	if err != nil {
		return err
	}
	return out.Close()
}

func outputPath(path string) string {
	base := strings.TrimSuffix(path, ".zst")
	base = strings.TrimSuffix(base, ".wtf-trace")
	switch convertFormat {
	case "pprof":
		return base + ".pb.gz"
	default:
		return base + ".json"
	}
}
