// Command itemdump converts between CBOR and JSON and prints CBOR
// documents in RFC 8949 diagnostic notation, driving
// github.com/nimblewire/itemcodec/stream directly rather than any
// generated per-type code.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"

	"github.com/nimblewire/itemcodec/stream"
)

// CLI defines the itemdump command-line interface: one subcommand per
// operation, kept deliberately small the way cborgen's own CLI is.
type CLI struct {
	Convert ConvertCmd `cmd:"" help:"Convert a document between CBOR and JSON."`
	Diag    DiagCmd    `cmd:"" help:"Print a CBOR document in RFC 8949 diagnostic notation."`
	Verbose bool       `short:"v" help:"Enable verbose diagnostics."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("itemdump"),
		kong.Description("Inspect and convert CBOR/JSON documents."),
	)
	if !cli.Verbose {
		log.SetOutput(io.Discard)
	}
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}

func formatName(s string) (stream.Format, error) {
	switch s {
	case "cbor":
		return stream.CBOR, nil
	case "json":
		return stream.JSON, nil
	default:
		return 0, fmt.Errorf("unknown format %q (want cbor or json)", s)
	}
}

// ConvertCmd re-encodes an input document from one format to the
// other, streaming one data item at a time through a Reader/Writer
// pair rather than buffering a parsed tree.
type ConvertCmd struct {
	From string `help:"Input format." enum:"cbor,json" default:"cbor"`
	To   string `help:"Output format." enum:"cbor,json" default:"json"`
	In   string `arg:"" optional:"" help:"Input file (default: stdin)."`
	Out  string `arg:"" optional:"" help:"Output file (default: stdout)."`
}

func (c *ConvertCmd) Run(cli *CLI) error {
	from, err := formatName(c.From)
	if err != nil {
		return err
	}
	to, err := formatName(c.To)
	if err != nil {
		return err
	}

	inFile, closeIn, err := openInput(c.In)
	if err != nil {
		return err
	}
	defer closeIn()
	outFile, closeOut, err := openOutput(c.Out)
	if err != nil {
		return err
	}
	defer closeOut()

	cfg := stream.DefaultConfig()
	in := stream.NewInput(inFile)
	out := stream.NewSinkOutput(outFile, 4096)
	r := stream.NewReader(in, cfg, from)
	w := stream.NewWriter(out, cfg, to)

	n, err := copyItems(r, w)
	if err != nil {
		return err
	}
	if err := out.Flush(); err != nil {
		return err
	}
	log.Printf("converted %s data item(s), %s written", humanize.Comma(int64(n)), humanize.Bytes(uint64(out.Position())))
	return nil
}

// copyItems reads whole top-level data items from r and renders each
// through w until input is exhausted, returning how many it copied.
func copyItems(r *stream.Reader, w *stream.Writer) (int, error) {
	n := 0
	for {
		k, err := r.Peek()
		if err != nil {
			return n, err
		}
		if k == stream.EndOfInput {
			break
		}
		if err := copyOne(r, w); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// copyOne pulls one complete data item from r and pushes it to w,
// recursing into containers and tags the same way Reader.SkipDataItem
// walks them, except every item is rendered instead of discarded.
func copyOne(r *stream.Reader, w *stream.Writer) error {
	ev, err := r.Next()
	if err != nil {
		return err
	}
	if ev.Kind == stream.EndOfInput {
		return nil
	}
	return copyEvent(r, w, ev)
}

func copyEvent(r *stream.Reader, w *stream.Writer, ev *stream.Event) error {
	switch ev.Kind {
	case stream.Null:
		return w.WriteNull()
	case stream.Undefined:
		return w.WriteUndefined()
	case stream.Boolean:
		return w.WriteBoolean(ev.Bool)
	case stream.Int, stream.Long:
		return w.WriteInt64(ev.Int64)
	case stream.OverLong:
		if ev.Negative {
			return w.WriteNegativeOverflow(ev.UInt64)
		}
		return w.WriteUint64(ev.UInt64)
	case stream.Float16, stream.Float, stream.Double:
		return w.WriteFloat64(ev.Float64Value)
	case stream.NumberString:
		f, ok := ev.AsFloat64()
		if !ok {
			return fmt.Errorf("cannot convert NumberString %q", ev.Bytes)
		}
		return w.WriteFloat64(f)
	case stream.String:
		return w.WriteString(ev.Str)
	case stream.Chars, stream.Text:
		return w.WriteString(string(ev.Bytes))
	case stream.Bytes:
		return w.WriteBytes(append([]byte(nil), ev.Bytes...))
	case stream.ArrayHeader:
		n := ev.UInt64 // ev is overwritten by copyOne below
		if err := w.WriteArrayHeader(int(n)); err != nil {
			return err
		}
		for i := uint64(0); i < n; i++ {
			if err := copyOne(r, w); err != nil {
				return err
			}
		}
		return nil
	case stream.ArrayStart:
		if err := w.WriteArrayStart(); err != nil {
			return err
		}
		return copyUntilBreak(r, w)
	case stream.MapHeader:
		n := ev.UInt64 // ev is overwritten by copyOne below
		if err := w.WriteMapHeader(int(n)); err != nil {
			return err
		}
		for i := uint64(0); i < n*2; i++ {
			if err := copyOne(r, w); err != nil {
				return err
			}
		}
		return nil
	case stream.MapStart:
		if err := w.WriteMapStart(); err != nil {
			return err
		}
		return copyUntilBreak(r, w)
	case stream.Tag:
		if err := w.WriteTag(ev.UInt64); err != nil {
			return err
		}
		return copyOne(r, w)
	case stream.SimpleValue:
		return fmt.Errorf("simple(%d) has no JSON representation", ev.UInt64)
	case stream.TextStart, stream.BytesStart:
		return copyUnsizedChunks(r, w, ev.Kind)
	default:
		return fmt.Errorf("kind %s cannot be copied", ev.Kind)
	}
}

func copyUntilBreak(r *stream.Reader, w *stream.Writer) error {
	for {
		hasBreak, err := r.HasBreak()
		if err != nil {
			return err
		}
		if hasBreak {
			if err := r.ReadBreak(); err != nil {
				return err
			}
			return w.WriteBreak()
		}
		if err := copyOne(r, w); err != nil {
			return err
		}
	}
}

func copyUnsizedChunks(r *stream.Reader, w *stream.Writer, kind stream.Kind) error {
	var chunks []byte
	for {
		hasBreak, err := r.HasBreak()
		if err != nil {
			return err
		}
		if hasBreak {
			if err := r.ReadBreak(); err != nil {
				return err
			}
			break
		}
		if kind == stream.BytesStart {
			b, err := r.ReadBytes()
			if err != nil {
				return err
			}
			chunks = append(chunks, b...)
		} else {
			s, err := r.ReadString()
			if err != nil {
				return err
			}
			chunks = append(chunks, s...)
		}
	}
	if kind == stream.BytesStart {
		return w.WriteBytes(chunks)
	}
	return w.WriteString(string(chunks))
}

// DiagCmd prints a CBOR document's items in diagnostic notation, one
// per line.
type DiagCmd struct {
	In string `arg:"" optional:"" help:"Input file (default: stdin)."`
}

func (d *DiagCmd) Run(cli *CLI) error {
	inFile, closeIn, err := openInput(d.In)
	if err != nil {
		return err
	}
	defer closeIn()

	cfg := stream.DefaultConfig()
	r := stream.NewReader(stream.NewInput(inFile), cfg, stream.CBOR)
	for {
		k, err := r.Peek()
		if err != nil {
			return err
		}
		if k == stream.EndOfInput {
			return nil
		}
		s, err := stream.Diagnose(r)
		if err != nil {
			return err
		}
		fmt.Println(s)
	}
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
