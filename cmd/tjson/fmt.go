package main

import (
	"bufio"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/Neumenon/tjson/node"
	"github.com/Neumenon/tjson/pipe"
)

// fmtCommand prints each document in compact form, one per line.
type fmtCommand struct {
	g     *globals
	files *[]string
	tree  *bool
}

func addFmtCommand(app *kingpin.Application, g *globals) {
	cmd := &fmtCommand{g: g}
	f := app.Command("fmt", "Print each document in compact form.").Action(cmd.run)
	cmd.tree = f.Flag("tree", "Decode into a tree before printing instead of copying token by token.").Bool()
	cmd.files = f.Arg("file", "Files to format (default: stdin).").Default("-").Strings()
}

func (cmd *fmtCommand) run(*kingpin.ParseContext) error {
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for _, name := range *cmd.files {
		if err := cmd.format(out, name); err != nil {
			return errors.Wrap(err, name)
		}
		if err := out.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *fmtCommand) format(out *bufio.Writer, name string) error {
	in, err := openInput(name, cmd.g.cfg.Charset, cmd.g.logger)
	if err != nil {
		return err
	}
	defer in.Close()

	if *cmd.tree {
		v, err := node.Decode(in, node.DecodeOptions{MaxDepth: cmd.g.cfg.MaxDepth})
		if err != nil {
			return err
		}
		return node.Encode(out, v)
	}

	st, err := pipe.Transcode(out, in, cmd.g.cfg.pipeOptions())
	if err != nil {
		return err
	}
	level.Debug(cmd.g.logger).Log("msg", "formatted", "file", name, "bytes", st.Bytes)
	return nil
}
