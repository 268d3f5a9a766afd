package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/audioconcat/cmd"
	"github.com/lepinkainen/audioconcat/types"
)

var Version = "dev"

type CLI struct {
	Mix     cmd.MixCmd       `cmd:"" default:"withargs" help:"Join audio files into one, with optional silence between them"`
	Probe   cmd.ProbeCmd     `cmd:"" help:"Show format and length of audio files"`
	Formats cmd.FormatsCmd   `cmd:"" help:"List supported audio formats"`
	Version kong.VersionFlag `short:"V" help:"Show version and exit"`
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("audioconcat"),
		kong.Description("Concatenate audio files in order or shuffled, with a silence gap between clips."),
		kong.UsageOnError(),
		kong.Vars{"version": Version},
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	err = ctx.Run(&types.AppContext{Version: Version})
	ctx.FatalIfErrorf(err)
}
