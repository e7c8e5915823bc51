package main

import (
	"fmt"
	"io"

	"github.com/signadot/snapshot/store"

	"github.com/scott-cotton/cli"
)

func list(cfg *ListConfig, cc *cli.Context, args []string) error {
	args, err := cfg.List.Parse(cc, args)
	if err != nil {
		cfg.List.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: list requires at least one file", cli.ErrUsage)
	}
	for _, arg := range args {
		if err := listFile(cc.Out, arg, len(args) > 1); err != nil {
			return err
		}
	}
	return nil
}

func listFile(w io.Writer, path string, header bool) error {
	st, err := store.Load(path)
	if err != nil {
		return err
	}
	if n := len(st.Unnamed()); n > 0 {
		theLog.Warn("blocks without identifier", "file", path, "count", n)
	}
	if header {
		if _, err := fmt.Fprintf(w, "# %s\n", path); err != nil {
			return err
		}
	}
	for _, name := range st.Names() {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}
