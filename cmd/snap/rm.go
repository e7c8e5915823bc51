package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/signadot/snapshot/store"

	"github.com/scott-cotton/cli"
)

func rm(cfg *RmConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Rm.Parse(cc, args)
	if err != nil {
		cfg.Rm.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: rm requires a file and at least one name", cli.ErrUsage)
	}
	return rmNames(args[0], args[1:], cfg.Force)
}

// rmNames deletes the entries named names from the file at path. The
// file is removed once it holds no entries. Unless force is set, a name
// which is not in the file is an error and nothing is written.
func rmNames(path string, names []string, force bool) error {
	st, err := store.Load(path)
	if err != nil {
		return err
	}
	var missing []string
	for _, name := range names {
		if !strings.HasSuffix(name, "=") {
			name += "="
		}
		if !st.Delete(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 && !force {
		return fmt.Errorf("no snapshot %s in %s", strings.Join(missing, ", "), path)
	}
	if st.Len() == 0 && len(st.Unnamed()) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %w", store.ErrIO, err)
		}
		theLog.Info("removed", "file", path)
		return nil
	}
	if err := st.Flush(); err != nil {
		return err
	}
	theLog.Info("deleted", "file", path, "entries", st.Len())
	return nil
}
