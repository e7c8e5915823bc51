package main

import (
	"fmt"
	"io"

	"github.com/signadot/snapshot/store"

	"github.com/scott-cotton/cli"
)

func fmtFiles(cfg *FmtConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Fmt.Parse(cc, args)
	if err != nil {
		cfg.Fmt.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: fmt requires at least one file", cli.ErrUsage)
	}
	differ := false
	for _, arg := range args {
		changed, err := fmtFile(cc.Out, arg, cfg.Write)
		if err != nil {
			return err
		}
		differ = differ || changed
	}
	if differ && !cfg.Write {
		return cli.ExitCodeErr(1)
	}
	return nil
}

// fmtFile reports whether path is not normalized. With write set it
// rewrites the file, otherwise it prints its path to w.
func fmtFile(w io.Writer, path string, write bool) (bool, error) {
	st, err := store.Load(path)
	if err != nil {
		return false, err
	}
	if !st.Changed() {
		return false, nil
	}
	if write {
		if err := st.Flush(); err != nil {
			return true, err
		}
		theLog.Info("formatted", "file", path, "entries", st.Len())
		return true, nil
	}
	_, err = fmt.Fprintln(w, path)
	return true, err
}
