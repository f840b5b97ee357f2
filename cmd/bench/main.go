// bench - tjson benchmark runner
//
// Compares full-document validation and decoding throughput of tjson against
// encoding/json, json-iterator and buger/jsonparser on a corpus:
//   - MB/s per parser and case
//   - Allocations per document
//
// Usage:
//
//	bench [--csv=FILE] [file...]
//
// Without files a built-in synthetic corpus is used. Output: markdown table on
// stdout, optional CSV.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/alecthomas/kingpin/v2"
	"github.com/buger/jsonparser"
	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/Neumenon/tjson/node"
	"github.com/Neumenon/tjson/pipe"
	"github.com/Neumenon/tjson/tjson"
)

type Case struct {
	Name string
	Data []byte
}

type Result struct {
	Case        string
	Parser      string
	Bytes       int
	NsPerOp     int64
	AllocsPerOp int64
}

// BytesPerSec returns the throughput of one result.
func (r Result) BytesPerSec() uint64 {
	if r.NsPerOp == 0 {
		return 0
	}
	return uint64(float64(r.Bytes) / (float64(r.NsPerOp) / 1e9))
}

// parser fully consumes one document.
type parser struct {
	name string
	run  func(data []byte) error
}

var parsers = []parser{
	{"tjson/validate", func(data []byte) error {
		_, err := pipe.Validate(tjson.NewBytesSource(data), pipe.DefaultOptions())
		return err
	}},
	{"tjson/node", func(data []byte) error {
		_, err := node.Unmarshal(data)
		return err
	}},
	{"encoding/json", func(data []byte) error {
		var v any
		return json.Unmarshal(data, &v)
	}},
	{"jsoniter", func(data []byte) error {
		var v any
		return jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &v)
	}},
	{"jsonparser", func(data []byte) error {
		value, typ, _, err := jsonparser.Get(data)
		if err != nil {
			return err
		}
		return walkJSONParser(value, typ)
	}},
}

// walkJSONParser visits every value, since jsonparser is lazy.
func walkJSONParser(value []byte, typ jsonparser.ValueType) error {
	switch typ {
	case jsonparser.Object:
		return jsonparser.ObjectEach(value, func(_, v []byte, t jsonparser.ValueType, _ int) error {
			return walkJSONParser(v, t)
		})
	case jsonparser.Array:
		var inner error
		_, err := jsonparser.ArrayEach(value, func(v []byte, t jsonparser.ValueType, _ int, _ error) {
			if inner == nil {
				inner = walkJSONParser(v, t)
			}
		})
		if err != nil {
			return err
		}
		return inner
	case jsonparser.String:
		_, err := jsonparser.ParseString(value)
		return err
	case jsonparser.Number:
		_, err := jsonparser.ParseFloat(value)
		return err
	default:
		return nil
	}
}

// options holds the parsed command line.
type options struct {
	csvPath *string
	files   *[]string
}

func newApp() (*kingpin.Application, *options) {
	app := kingpin.New("bench", "Compare tjson parsing throughput with other JSON parsers.")
	app.HelpFlag.Short('h')

	opts := &options{}
	opts.csvPath = app.Flag("csv", "Also write results as CSV to this file.").String()
	opts.files = app.Arg("file", "JSON documents to use as corpus (default: built-in corpus).").ExistingFiles()
	return app, opts
}

func main() {
	app, opts := newApp()
	kingpin.MustParse(app.Parse(os.Args[1:]))

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "bench: %v\n", err)
		os.Exit(1)
	}
}

func run(opts *options) error {
	corpus, err := loadCorpus(*opts.files)
	if err != nil {
		return errors.Wrap(err, "loading corpus")
	}

	fmt.Fprintf(os.Stderr, "tjson Benchmark Runner\n")
	fmt.Fprintf(os.Stderr, "======================\n")
	fmt.Fprintf(os.Stderr, "Corpus: %d cases\n\n", len(corpus))

	results := benchmark(corpus)

	if *opts.csvPath != "" {
		if err := saveCSV(*opts.csvPath, results); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "CSV written to: %s\n", *opts.csvPath)
	}
	writeMarkdown(os.Stdout, results)
	return nil
}

func benchmark(corpus []Case) []Result {
	var results []Result
	for _, c := range corpus {
		for _, p := range parsers {
			if err := p.run(c.Data); err != nil {
				fmt.Fprintf(os.Stderr, "Skip %s/%s: %v\n", c.Name, p.name, err)
				continue
			}
			br := testing.Benchmark(func(b *testing.B) {
				b.ReportAllocs()
				b.SetBytes(int64(len(c.Data)))
				for i := 0; i < b.N; i++ {
					if err := p.run(c.Data); err != nil {
						b.Fatal(err)
					}
				}
			})
			results = append(results, Result{
				Case:        c.Name,
				Parser:      p.name,
				Bytes:       len(c.Data),
				NsPerOp:     br.NsPerOp(),
				AllocsPerOp: br.AllocsPerOp(),
			})
			fmt.Fprintf(os.Stderr, "%-16s %-16s %s/s\n", c.Name, p.name, humanize.Bytes(results[len(results)-1].BytesPerSec()))
		}
	}
	return results
}

// saveCSV writes results as CSV to path.
func saveCSV(path string, results []Result) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating CSV file")
	}
	if err := writeCSV(f, results); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}

// loadCorpus reads the named files, or builds the synthetic corpus.
func loadCorpus(files []string) ([]Case, error) {
	if len(files) == 0 {
		return syntheticCorpus(), nil
	}
	var corpus []Case
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		corpus = append(corpus, Case{Name: filepath.Base(f), Data: data})
	}
	return corpus, nil
}

func syntheticCorpus() []Case {
	var small bytes.Buffer
	small.WriteString(`{"id":12345,"name":"benchmark é value","tags":["a","b","c"],"nested":{"x":1.5e3,"y":[true,false,null]}}`)

	var numbers bytes.Buffer
	numbers.WriteByte('[')
	for i := 0; i < 10000; i++ {
		if i > 0 {
			numbers.WriteByte(',')
		}
		numbers.WriteString(strconv.FormatFloat(float64(i)*1.25-3000, 'g', -1, 64))
	}
	numbers.WriteByte(']')

	var strs bytes.Buffer
	strs.WriteByte('[')
	for i := 0; i < 2000; i++ {
		if i > 0 {
			strs.WriteByte(',')
		}
		fmt.Fprintf(&strs, `"line %d\twith \"escapes\" and é€ %s"`, i, strings.Repeat("x", i%64))
	}
	strs.WriteByte(']')

	var records bytes.Buffer
	records.WriteByte('[')
	for i := 0; i < 1000; i++ {
		if i > 0 {
			records.WriteByte(',')
		}
		fmt.Fprintf(&records, `{"seq":%d,"user":{"id":%d,"name":"user-%d","active":%t},"score":%d.%02d,"tags":["t%d","t%d"]}`,
			i, i*7, i, i%2 == 0, i%100, i%97, i%5, i%11)
	}
	records.WriteByte(']')

	deep := strings.Repeat(`{"k":[`, 200) + "1" + strings.Repeat("]}", 200)

	return []Case{
		{"small", small.Bytes()},
		{"numbers", numbers.Bytes()},
		{"strings", strs.Bytes()},
		{"records", records.Bytes()},
		{"deep", []byte(deep)},
	}
}

func writeCSV(w io.Writer, results []Result) error {
	if _, err := fmt.Fprintln(w, "case,parser,bytes,ns_per_op,bytes_per_sec,allocs_per_op"); err != nil {
		return err
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "%s,%s,%d,%d,%d,%d\n",
			r.Case, r.Parser, r.Bytes, r.NsPerOp, r.BytesPerSec(), r.AllocsPerOp); err != nil {
			return err
		}
	}
	return nil
}

func writeMarkdown(w io.Writer, results []Result) {
	fmt.Fprintf(w, "# tjson Benchmark Results\n\n")
	fmt.Fprintf(w, "| Case | Size | Parser | Throughput | ns/doc | allocs/doc |\n")
	fmt.Fprintf(w, "|------|------|--------|------------|--------|------------|\n")
	for _, r := range results {
		fmt.Fprintf(w, "| %s | %s | %s | %s/s | %s | %s |\n",
			r.Case,
			humanize.Bytes(uint64(r.Bytes)),
			r.Parser,
			humanize.Bytes(r.BytesPerSec()),
			humanize.Comma(r.NsPerOp),
			humanize.Comma(r.AllocsPerOp))
	}
}
