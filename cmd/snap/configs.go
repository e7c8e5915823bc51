package main

import (
	"io"
	"os"

	"github.com/signadot/snapshot/encode"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	Color bool `cli:"name=color desc='output with color'"`

	Main *cli.Command
}

// encOpts colors output when -color is given, or when it is not given
// and w is a terminal.
func (cfg *MainConfig) encOpts(w io.Writer) []encode.EncodeOption {
	if cfg.Color {
		return []encode.EncodeOption{encode.EncodeColors(encode.NewColors())}
	}
	if cfg.Main != nil {
		for _, opt := range cfg.Main.Opts {
			if opt.Name == "color" && opt.Value != nil {
				return nil
			}
		}
	}
	f, ok := w.(*os.File)
	if !ok {
		return nil
	}
	if isatty.IsTerminal(f.Fd()) {
		return []encode.EncodeOption{encode.EncodeColors(encode.NewColors())}
	}
	return nil
}

type ListConfig struct {
	*MainConfig

	List *cli.Command
}

type GetConfig struct {
	*MainConfig
	Raw bool `cli:"name=raw desc='print the stored text as is'"`

	Get *cli.Command
}

type FmtConfig struct {
	*MainConfig
	Write bool `cli:"name=w desc='write the result to the file instead of listing files that differ'"`

	Fmt *cli.Command
}

type RmConfig struct {
	*MainConfig
	Force bool `cli:"name=f desc='ignore names which are not in the file'"`

	Rm *cli.Command
}
