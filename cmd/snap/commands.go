package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "snap").
		WithSynopsis("snap [opts] command [opts]").
		WithDescription("snap inspects and normalizes snapshot (.snap) files.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return snapMain(cfg, cc, args)
		}).
		WithSubs(
			ListCommand(cfg),
			GetCommand(cfg),
			FmtCommand(cfg),
			RmCommand(cfg))
}

func snapMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

func ListCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ListConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.List, "list").
		WithAliases("l", "ls").
		WithSynopsis("list file...").
		WithDescription("list the snapshot names in files").
		WithRun(func(cc *cli.Context, args []string) error {
			return list(cfg, cc, args)
		})
}

func GetCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &GetConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Get, "get").
		WithAliases("g").
		WithSynopsis("get [-raw] name file").
		WithDescription("print the value recorded under name in file").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return get(cfg, cc, args)
		})
}

func FmtCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &FmtConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Fmt, "fmt").
		WithSynopsis("fmt [-w] file...").
		WithDescription("sort and normalize snapshot files. Without -w, list the files which are not normalized.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return fmtFiles(cfg, cc, args)
		})
}

func RmCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &RmConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Rm, "rm").
		WithSynopsis("rm [-f] file name...").
		WithDescription("delete snapshots from a file, for instance those reported as unused").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return rm(cfg, cc, args)
		})
}
