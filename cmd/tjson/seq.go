package main

import (
	"bufio"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/Neumenon/tjson/stream"
)

// seqCommand copies record streams to stdout, validating every record and
// optionally changing the framing.
type seqCommand struct {
	g       *globals
	files   *[]string
	from    *string
	to      *string
	decode  *bool
	reports *bool
	strict  *bool
}

func addSeqCommand(app *kingpin.Application, g *globals) {
	cmd := &seqCommand{g: g}
	seq := app.Command("seq", "Validate json-seq or NDJSON streams and write them to stdout.").Action(cmd.run)
	modes := []string{"seq", "json-seq", "ndjson", "jsonl"}
	cmd.from = seq.Flag("from", "Input framing (default: seq_mode from the config).").Enum(modes...)
	cmd.to = seq.Flag("to", "Output framing (default: the input framing).").Enum(modes...)
	cmd.decode = seq.Flag("decode", "Decode records into trees and re-encode them.").Bool()
	cmd.reports = seq.Flag("reports", "Write an error record for every malformed record and a summary record per file.").Bool()
	cmd.strict = seq.Flag("strict", "Fail on the first malformed record.").Bool()
	cmd.files = seq.Arg("file", "Streams to read (default: stdin).").Default("-").Strings()
}

func (cmd *seqCommand) modes() (stream.Mode, stream.Mode) {
	from := cmd.g.cfg.seqMode()
	if *cmd.from != "" {
		from, _ = stream.ParseMode(*cmd.from)
	}
	to := from
	if *cmd.to != "" {
		to, _ = stream.ParseMode(*cmd.to)
	}
	return from, to
}

func (cmd *seqCommand) run(*kingpin.ParseContext) error {
	from, to := cmd.modes()
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	w := stream.NewWriter(out, to)
	cursor := stream.NewCursor()
	for _, name := range *cmd.files {
		if err := cmd.copy(w, cursor, name, from); err != nil {
			return errors.Wrap(err, name)
		}
	}
	return nil
}

func (cmd *seqCommand) copy(w *stream.Writer, cursor *stream.Cursor, name string, from stream.Mode) error {
	logger := log.With(cmd.g.logger, "file", name)
	in, err := openInput(name, cmd.g.cfg.Charset, logger)
	if err != nil {
		return err
	}
	defer in.Close()

	opts := []stream.ReaderOption{
		stream.WithMode(from),
		stream.WithMaxDepth(cmd.g.cfg.MaxDepth),
		stream.WithLogger(logger),
	}
	if *cmd.decode {
		opts = append(opts, stream.WithDecode())
	}
	r := stream.NewReader(in, opts...)

	for rec, err := range r.Records() {
		var perr *stream.ParseError
		if errors.As(err, &perr) {
			if *cmd.strict {
				return err
			}
			if *cmd.reports {
				if err := w.WriteValue(stream.ErrorReport(perr)); err != nil {
					return err
				}
			}
			continue
		}
		if err != nil {
			return err
		}

		if err := cursor.Process(name, rec); err != nil {
			return err
		}
		if rec.Value != nil {
			err = w.WriteValue(rec.Value)
		} else {
			err = w.WriteRaw(rec.Data)
		}
		if err != nil {
			return err
		}
	}

	st := cursor.Finish(name, r.Seen())
	level.Info(logger).Log(
		"msg", "stream done",
		"records", st.Records,
		"skipped", st.Skipped,
		"bytes", humanize.Bytes(uint64(st.Bytes)),
		"crc", st.CRCHex(),
	)
	if *cmd.reports {
		return w.WriteValue(stream.SummaryReport(st))
	}
	return nil
}
