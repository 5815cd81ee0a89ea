// Applies a scan format to stdin and prints the extracted values, one per line.
package main

import (
	"fmt"
	"log"
	"os"

	_ "github.com/anacrolix/envpprof"
	"github.com/anacrolix/tagflag"
	"github.com/davecgh/go-spew/spew"

	"github.com/anacrolix/unfmt"
	"github.com/anacrolix/unfmt/lookahead"
)

func main() {
	log.SetFlags(log.Flags() | log.Lshortfile)
	var args struct {
		Verbose bool `help:"dump the parsed format pieces before scanning"`
		tagflag.StartPos
		Format string
	}
	tagflag.Parse(&args, tagflag.Description(
		"Scans stdin per FORMAT and prints the extracted values. "+
			"Argument type tags pick the destination type: d/i, u, x, o, b, c, f, e, s."))
	f, err := unfmt.Compile(args.Format)
	if err != nil {
		log.Fatalf("compiling format: %s", err)
	}
	if args.Verbose {
		spew.Fdump(os.Stderr, f.Pieces())
	}
	var dsts []any
	var printOrder []any
	for _, piece := range f.Pieces() {
		arg, isArg := piece.(unfmt.Argument)
		if !isArg {
			continue
		}
		switch arg.Position.Kind {
		case unfmt.PositionSuppressed:
		case unfmt.PositionNamed:
			v := newDst(arg.Spec.Type)
			dsts = append(dsts, unfmt.Arg{Name: arg.Position.Name, Value: v})
			printOrder = append(printOrder, v)
		default:
			// Indexed positions are treated sequentially here; the library resolves them
			// against the positional destinations we pass.
			v := newDst(arg.Spec.Type)
			dsts = append(dsts, v)
			printOrder = append(printOrder, v)
		}
	}
	n, err := f.Scan(lookahead.NewReaderSource(os.Stdin), dsts...)
	if err != nil {
		log.Fatalf("scan failed after binding %d values: %s", n, err)
	}
	for _, v := range printOrder {
		fmt.Println(deref(v))
	}
}

func newDst(tag string) any {
	switch tag {
	case "d", "i":
		return new(int64)
	case "u", "x", "X", "o", "b":
		return new(uint64)
	case "c":
		return new(rune)
	case "f", "e":
		return new(float64)
	default:
		return new(string)
	}
}

func deref(v any) any {
	switch p := v.(type) {
	case *int64:
		return *p
	case *uint64:
		return *p
	case *rune:
		return string(*p)
	case *float64:
		return *p
	case *string:
		return *p
	}
	return v
}
