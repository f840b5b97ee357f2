package main

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// input is a decoded input stream with the closers of every layer.
type input struct {
	*bufio.Reader
	closers []io.Closer
}

func (in *input) Close() error {
	var first error
	for i := len(in.closers) - 1; i >= 0; i-- {
		if err := in.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openInput opens name ("-" is stdin), decompresses it by extension and
// converts it from charsetName to UTF-8.
func openInput(name, charsetName string, logger log.Logger) (*input, error) {
	in := &input{}
	var r io.Reader = os.Stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, errors.Wrap(err, "open file")
		}
		in.closers = append(in.closers, f)
		r = f
	}

	switch {
	case strings.HasSuffix(name, ".gz"):
		zr, err := gzip.NewReader(r)
		if err != nil {
			in.Close()
			return nil, errors.Wrapf(err, "%s: gzip", name)
		}
		in.closers = append(in.closers, zr)
		r = zr
	case strings.HasSuffix(name, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			in.Close()
			return nil, errors.Wrapf(err, "%s: zstd", name)
		}
		rc := zr.IOReadCloser()
		in.closers = append(in.closers, rc)
		r = rc
	}

	r, err := decodeCharset(r, charsetName, log.With(logger, "file", name))
	if err != nil {
		in.Close()
		return nil, err
	}
	in.Reader = bufio.NewReader(r)
	return in, nil
}

// decodeCharset converts r to UTF-8. "auto" sniffs the first KiB.
func decodeCharset(r io.Reader, name string, logger log.Logger) (io.Reader, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return r, nil
	case "auto":
		br := bufio.NewReader(r)
		head, _ := br.Peek(1024)
		enc, detected, certain := charset.DetermineEncoding(head, "application/json")
		level.Debug(logger).Log("msg", "detected charset", "charset", detected, "certain", certain)
		if detected == "utf-8" {
			return br, nil
		}
		return transform.NewReader(br, enc.NewDecoder()), nil
	}
	enc, canonical := charset.Lookup(name)
	if enc == nil {
		return nil, errors.Errorf("unknown charset %q", name)
	}
	level.Debug(logger).Log("msg", "decoding input", "charset", canonical)
	return transform.NewReader(r, enc.NewDecoder()), nil
}
