package main

// A `kuerydemo` CLI exercising the kuery library: parse a KQL or Lucene
// query from the command line, print the resulting ElasticSearch Query DSL
// as indented JSON, or run in reverse (--render-kql) to turn an ES-DSL JSON
// document back into KQL source.

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/mitchellh/go-wordwrap"
	"github.com/spf13/pflag"
	"go.elastic.co/ecszap"
	"go.uber.org/zap"

	"github.com/kqldsl/kuery"
	"github.com/kqldsl/kuery/internal/ansipainter"
	"github.com/kqldsl/kuery/internal/esdecode"
	"github.com/kqldsl/kuery/internal/lg"
)

var flags = pflag.NewFlagSet("kuerydemo", pflag.ExitOnError)
var flagVerbose = flags.BoolP("verbose", "v", false, "verbose logging")
var flagHelp = flags.BoolP("help", "h", false, "print this help")
var flagLucene = flags.BoolP("lucene", "l", false, "parse the query as Lucene classical syntax instead of KQL")
var flagRenderKQL = flags.BoolP("render-kql", "r", false, "read an ES-DSL JSON query and render it back to KQL source")
var flagNoColor = flags.Bool("no-color", false, "disable ANSI coloring even on a terminal")

func usage() {
	fmt.Println(`usage: kuerydemo [OPTIONS] [QUERY]

Parses QUERY (or stdin, if QUERY is omitted) as KQL, printing the
ElasticSearch Query DSL it decodes to.

With --lucene, QUERY is structurally validated as Lucene classical syntax
and wrapped in a query_string escape hatch.

With --render-kql, QUERY (or stdin) is instead read as an ES-DSL JSON
document and rendered back to KQL source.`)
	flags.PrintDefaults()
}

func fail(wrapWidth uint, msg string) {
	fmt.Fprintln(os.Stderr, wordwrap.WrapString("error: "+msg, wrapWidth))
	os.Exit(1)
}

func readQuery(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(bufio.NewReader(os.Stdin))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func wrapWidthFor(isTerminal bool) uint {
	if !isTerminal {
		return 0 // wordwrap.WrapString treats 0 as "no wrapping"
	}
	return 100
}

// printDecodeError reports a *kuery.DecodeError with a source-position caret
// under the offending column, colored via painter when color is enabled.
func printDecodeError(src string, err error, painter *ansipainter.ANSIPainter, wrapWidth uint) {
	de, ok := err.(*kuery.DecodeError)
	if !ok {
		fail(wrapWidth, err.Error())
	}
	var b strings.Builder
	painter.Paint(&b, "errorMsg")
	b.WriteString(de.Error())
	painter.Reset(&b)
	fmt.Fprintln(os.Stderr, wordwrap.WrapString(b.String(), wrapWidth))
	if de.Line == 1 && de.Column >= 1 {
		fmt.Fprintln(os.Stderr, src)
		var caret strings.Builder
		caret.WriteString(strings.Repeat(" ", de.Column-1))
		painter.Paint(&caret, "caret")
		caret.WriteByte('^')
		painter.Reset(&caret)
		fmt.Fprintln(os.Stderr, caret.String())
	}
	os.Exit(1)
}

func printRendered(v map[string]interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func main() {
	flags.SortFlags = false
	flags.Usage = usage
	flags.Parse(os.Args[1:])

	if *flagHelp {
		usage()
		os.Exit(0)
	}

	encoderConfig := ecszap.NewDefaultEncoderConfig()
	logLevel := zap.WarnLevel
	if *flagVerbose {
		logLevel = zap.DebugLevel
	}
	core := ecszap.NewCore(encoderConfig, os.Stderr, logLevel)
	logger := zap.New(core, zap.AddCaller()).Named("kuerydemo")

	configErr, cfg := loadConfig()
	if configErr != nil {
		logger.Warn("could not load config file", zap.Error(configErr))
	}

	useColor := isatty.IsTerminal(os.Stdout.Fd()) && !*flagNoColor
	if configNoColor, ok := cfg.GetBool("noColor"); ok && configNoColor {
		useColor = false
	}
	painter := ansipainter.NoColorPainter
	if useColor {
		painter = ansipainter.DefaultPainter
	}

	wrapWidth := wrapWidthFor(isatty.IsTerminal(os.Stderr.Fd()))

	query, err := readQuery(flags.Args())
	if err != nil {
		fail(wrapWidth, err.Error())
	}

	if *flagRenderKQL {
		q, err := esdecode.DecodeJSON([]byte(query))
		if err != nil {
			fail(wrapWidth, err.Error())
		}
		kql, err := kuery.RenderAsKQL(q)
		if err != nil {
			printDecodeError(query, err, painter, wrapWidth)
			return
		}
		fmt.Println(kql)
		return
	}

	var q kuery.Query
	if *flagLucene {
		q, err = kuery.ParseLucene(query)
	} else {
		q, err = kuery.ParseKQL(query)
	}
	if err != nil {
		printDecodeError(query, err, painter, wrapWidth)
		return
	}

	lg.Printf("parsed query: %#v", q)
	if err := printRendered(q.Render()); err != nil {
		fail(wrapWidth, err.Error())
	}
}
