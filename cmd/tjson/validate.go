package main

import (
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/Neumenon/tjson/pipe"
)

// validateCommand checks one document per file and prints its statistics.
type validateCommand struct {
	g     *globals
	files *[]string
	quiet *bool
}

func addValidateCommand(app *kingpin.Application, g *globals) {
	cmd := &validateCommand{g: g}
	validate := app.Command("validate", "Check that each file holds exactly one JSON document.").Action(cmd.run)
	cmd.quiet = validate.Flag("quiet", "Print failures only.").Short('q').Bool()
	cmd.files = validate.Arg("file", "Files to check (default: stdin).").Default("-").Strings()
}

func (cmd *validateCommand) run(*kingpin.ParseContext) error {
	ok := color.New(color.FgGreen, color.Bold).SprintFunc()
	fail := color.New(color.FgRed, color.Bold).SprintFunc()

	failed := 0
	for _, name := range *cmd.files {
		st, err := cmd.check(name)
		if err != nil {
			failed++
			fmt.Printf("%s %s: %v\n", fail("FAIL"), name, err)
			continue
		}
		if *cmd.quiet {
			continue
		}
		fmt.Printf("%s %s: %v, %d objects, %d arrays, %d keys, %d strings, %d numbers (%d integers), %d literals, depth %d\n",
			ok("OK"), name,
			humanize.Bytes(uint64(st.Bytes)),
			st.Objects, st.Arrays, st.Keys, st.Strings, st.Numbers, st.Integers, st.Literals, st.MaxDepth,
		)
	}
	level.Debug(cmd.g.logger).Log("msg", "validated", "files", len(*cmd.files), "failed", failed)
	if failed > 0 {
		return errors.Errorf("%d of %d files failed", failed, len(*cmd.files))
	}
	return nil
}

func (cmd *validateCommand) check(name string) (pipe.Stats, error) {
	in, err := openInput(name, cmd.g.cfg.Charset, cmd.g.logger)
	if err != nil {
		return pipe.Stats{}, err
	}
	defer in.Close()
	return pipe.Validate(in, cmd.g.cfg.pipeOptions())
}
