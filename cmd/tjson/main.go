// tjson - streaming JSON tool
//
// Usage:
//
//	tjson validate [file...]            Check documents and print statistics
//	tjson fmt [--tree] [file...]        Print documents in compact form
//	tjson seq [--from=M] [--to=M] [file...]
//	                                    Validate and convert json-seq / NDJSON streams
//	tjson number <span...>              Classify and convert number spans
//	tjson utf8 <codepoint...>           Encode codepoints as UTF-8
//	tjson version                       Print version info
//
// Files ending in .gz or .zst are decompressed. If no file is given, reads
// from stdin.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

const libVersion = "0.3.0"

// globals holds the flags shared by every command.
type globals struct {
	logLevel   *string
	configFile *string
	maxDepth   *int
	charset    *string

	logger log.Logger
	cfg    config
}

func main() {
	app := kingpin.New("tjson", "Streaming JSON validator, formatter and stream converter.")
	app.Version(libVersion)
	app.HelpFlag.Short('h')

	g := &globals{}
	g.logLevel = app.Flag("log.level", "Only log messages with the given severity or above.").
		Default("info").Enum("debug", "info", "warn", "error")
	g.configFile = app.Flag("config", "YAML file with defaults for max_depth, max_number_len, charset and seq_mode.").
		ExistingFile()
	g.maxDepth = app.Flag("max-depth", "Maximum container nesting (overrides the config file).").Int()
	g.charset = app.Flag("charset", "Input character set, or \"auto\" to detect it (overrides the config file).").String()
	app.PreAction(g.setup)

	addValidateCommand(app, g)
	addFmtCommand(app, g)
	addSeqCommand(app, g)
	addNumberCommand(app)
	addUTF8Command(app)
	app.Command("version", "Print version info.").Action(func(*kingpin.ParseContext) error {
		fmt.Printf("tjson %s\n", libVersion)
		return nil
	})

	kingpin.MustParse(app.Parse(os.Args[1:]))
}

// setup builds the logger and merges the config file under the flags.
func (g *globals) setup(*kingpin.ParseContext) error {
	g.logger = newLogger(*g.logLevel)

	cfg := defaultConfig()
	if *g.configFile != "" {
		var err error
		cfg, err = loadConfig(*g.configFile)
		if err != nil {
			return err
		}
		level.Debug(g.logger).Log("msg", "loaded config", "file", *g.configFile)
	}
	if *g.maxDepth > 0 {
		cfg.MaxDepth = *g.maxDepth
	}
	if *g.charset != "" {
		cfg.Charset = *g.charset
	}
	g.cfg = cfg
	return nil
}

func newLogger(lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	var opt level.Option
	switch lvl {
	case "debug":
		opt = level.AllowDebug()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		opt = level.AllowInfo()
	}
	return level.NewFilter(logger, opt)
}
