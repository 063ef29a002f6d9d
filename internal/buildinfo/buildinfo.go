package buildinfo

import (
	"fmt"
	"io"
	"runtime/debug"
)

// Dump writes the module version and vcs revision of the running binary.
func Dump(w io.Writer) error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		_, err := fmt.Fprintln(w, "unknown")
		return err
	}

	version := info.Main.Version
	if version == "" {
		version = "(devel)"
	}
	if _, err := fmt.Fprintln(w, version); err != nil {
		return err
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision", "vcs.time", "vcs.modified":
			if _, err := fmt.Fprintf(w, "%s: %s\n", s.Key, s.Value); err != nil {
				return err
			}
		}
	}
	return nil
}
