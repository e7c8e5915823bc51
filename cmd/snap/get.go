package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/signadot/snapshot/encode"
	"github.com/signadot/snapshot/ir"
	"github.com/signadot/snapshot/store"

	"github.com/scott-cotton/cli"
)

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		cfg.Get.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: get requires a name and a file", cli.ErrUsage)
	}
	var opts []encode.EncodeOption
	if !cfg.Raw {
		opts = cfg.encOpts(cc.Out)
	}
	return getValue(cc.Out, args[0], args[1], cfg.Raw, opts...)
}

// getValue prints the value of name in path. Values which are JSON are
// re-encoded with opts, others are printed as stored.
func getValue(w io.Writer, name, path string, raw bool, opts ...encode.EncodeOption) error {
	if !strings.HasSuffix(name, "=") {
		name += "="
	}
	st, err := store.Load(path)
	if err != nil {
		return err
	}
	v, ok := st.Value(name)
	if !ok {
		return fmt.Errorf("no snapshot %s in %s", name, path)
	}
	if !raw {
		if node, err := ir.FromJSON([]byte(v)); err == nil {
			return encode.Encode(node, w, opts...)
		}
	}
	_, err = io.WriteString(w, v+"\n")
	return err
}
