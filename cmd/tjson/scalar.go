package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/Neumenon/tjson/tjson"
)

// ============================================================
// number
// ============================================================

type numberCommand struct {
	spans *[]string
}

func addNumberCommand(app *kingpin.Application) {
	cmd := &numberCommand{}
	n := app.Command("number", "Classify number spans and convert them to int64 and float64.").Action(cmd.run)
	cmd.spans = n.Arg("span", "Number spans.").Required().Strings()
}

func (cmd *numberCommand) run(*kingpin.ParseContext) error {
	fail := color.New(color.FgRed, color.Bold).SprintFunc()
	bad := 0
	for _, span := range *cmd.spans {
		line, err := describeNumber(span)
		if err != nil {
			bad++
			fmt.Printf("%s %s: %v\n", fail("FAIL"), span, err)
			continue
		}
		fmt.Println(line)
	}
	if bad > 0 {
		return errors.Errorf("%d invalid spans", bad)
	}
	return nil
}

// describeNumber renders the class and conversions of one span.
func describeNumber(span string) (string, error) {
	b := []byte(span)
	class, res := tjson.ClassifyNumber(b)
	if res != tjson.Okay {
		return "", res.Err()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s", span, class)
	if class != tjson.ClassFloat {
		i, _ := tjson.NumberToInt(b)
		fmt.Fprintf(&sb, " int=%d", i)
		if (i == math.MaxInt64 || i == math.MinInt64) && strconv.FormatInt(i, 10) != span {
			sb.WriteString(" (saturated)")
		}
	}
	f, _ := tjson.NumberToFloat(b)
	fmt.Fprintf(&sb, " float=%s", strconv.FormatFloat(f, 'g', -1, 64))
	return sb.String(), nil
}

// ============================================================
// utf8
// ============================================================

type utf8Command struct {
	codepoints *[]string
}

func addUTF8Command(app *kingpin.Application) {
	cmd := &utf8Command{}
	u := app.Command("utf8", "Encode codepoints (U+1F600, 0x41 or 65) as UTF-8.").Action(cmd.run)
	cmd.codepoints = u.Arg("codepoint", "Codepoints.").Required().Strings()
}

func (cmd *utf8Command) run(*kingpin.ParseContext) error {
	for _, s := range *cmd.codepoints {
		enc, err := encodeCodepoint(s)
		if err != nil {
			return errors.Wrap(err, s)
		}
		fmt.Printf("%s: % X\n", s, enc)
	}
	return nil
}

// encodeCodepoint parses a codepoint and returns its UTF-8 encoding.
func encodeCodepoint(s string) ([]byte, error) {
	text := s
	if rest, ok := strings.CutPrefix(strings.ToUpper(s), "U+"); ok {
		text = "0x" + rest
	}
	cp, err := strconv.ParseInt(text, 0, 32)
	if err != nil {
		return nil, errors.Wrap(err, "parsing codepoint")
	}

	var buf [tjson.UTFMax]byte
	n, res := tjson.CodepointToUTF8(rune(cp), buf[:])
	if res != tjson.Okay {
		return nil, errors.Wrapf(res.Err(), "codepoint %U", cp)
	}
	return buf[:n], nil
}
