/*
 * Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License").
 * You may not use this file except in compliance with the License.
 * A copy of the License is located at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * or in the "license" file accompanying this file. This file is distributed
 * on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either
 * express or implied. See the License for the specific language governing
 * permissions and limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ion-works/ion-go/ion"
)

// process reads the specified input file(s) and re-writes the contents in
// the specified format.
func process(args []string) error {
	p, err := newProcessor(args)
	if err != nil {
		return err
	}
	return p.run()
}

type processor struct {
	infs     []string
	outf     string
	format   string
	manifest string

	cat ion.Catalog
	out ion.Writer
}

func newProcessor(args []string) (*processor, error) {
	ret := &processor{}

	i := 0
	for ; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			break
		}
		if arg == "-" || arg == "--" {
			i++
			break
		}

		switch arg {
		case "-o", "--output":
			i++
			if i >= len(args) {
				return nil, errors.New("no output file specified")
			}
			ret.outf = args[i]

		case "-f", "--format":
			i++
			if i >= len(args) {
				return nil, errors.New("no output format specified")
			}
			ret.format = args[i]

		case "-c", "--catalog":
			i++
			if i >= len(args) {
				return nil, errors.New("no catalog manifest specified")
			}
			ret.manifest = args[i]

		case "--verbose":
			zerolog.SetGlobalLevel(zerolog.DebugLevel)

		default:
			return nil, fmt.Errorf("unrecognized option %q", arg)
		}
	}

	// Any remaining args are input files.
	ret.infs = append(ret.infs, args[i:]...)

	return ret, nil
}

func (p *processor) run() (err error) {
	if p.manifest != "" {
		p.cat, err = loadCatalog(p.manifest)
		if err != nil {
			return err
		}
	}

	out, err := openOutput(p.outf)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	switch p.format {
	case "", "pretty":
		p.out = ion.NewTextWriterOpts(out, ion.TextWriterPretty)
	case "text":
		p.out = ion.NewTextWriter(out)
	case "binary":
		p.out = ion.NewBinaryWriter(out)
	case "none":
		p.out = newNopWriter()
	default:
		return fmt.Errorf("unrecognized output format %q", p.format)
	}

	if len(p.infs) == 0 {
		if err := p.processReader("stdin", os.Stdin); err != nil {
			return err
		}
	} else {
		for _, inf := range p.infs {
			if err := p.processFile(inf); err != nil {
				return err
			}
		}
	}

	return p.out.Finish()
}

func (p *processor) processFile(name string) (err error) {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return p.processReader(name, f)
}

func (p *processor) processReader(name string, in io.Reader) error {
	log.Debug().Str("input", name).Msg("processing")

	r := ion.NewReaderCat(in, p.cat)
	if err := transcode(r, p.out); err != nil {
		return fmt.Errorf("%v: %w", name, err)
	}
	return nil
}

// transcode copies every value readable from r to w, recursing into
// containers.
func transcode(r ion.Reader, w ion.Writer) error {
	for r.Next() {
		if err := transcodeValue(r, w); err != nil {
			return err
		}
	}
	return r.Err()
}

func transcodeValue(r ion.Reader, w ion.Writer) error {
	name, err := r.FieldName()
	if err != nil {
		return err
	}
	if name != nil {
		if err := w.FieldName(*name); err != nil {
			return err
		}
	}

	annos, err := r.Annotations()
	if err != nil {
		return err
	}
	if len(annos) > 0 {
		if err := w.Annotations(annos...); err != nil {
			return err
		}
	}

	if r.IsNull() {
		return w.WriteNullType(r.Type())
	}

	switch r.Type() {
	case ion.BoolType:
		val, err := r.BoolValue()
		if err != nil {
			return err
		}
		return w.WriteBool(*val)

	case ion.IntType:
		return transcodeInt(r, w)

	case ion.FloatType:
		val, err := r.FloatValue()
		if err != nil {
			return err
		}
		return w.WriteFloat(*val)

	case ion.DecimalType:
		val, err := r.DecimalValue()
		if err != nil {
			return err
		}
		return w.WriteDecimal(val)

	case ion.TimestampType:
		val, err := r.TimestampValue()
		if err != nil {
			return err
		}
		return w.WriteTimestamp(*val)

	case ion.SymbolType:
		val, err := r.SymbolValue()
		if err != nil {
			return err
		}
		return w.WriteSymbol(*val)

	case ion.StringType:
		val, err := r.StringValue()
		if err != nil {
			return err
		}
		return w.WriteString(*val)

	case ion.ClobType:
		val, err := r.ByteValue()
		if err != nil {
			return err
		}
		return w.WriteClob(val)

	case ion.BlobType:
		val, err := r.ByteValue()
		if err != nil {
			return err
		}
		return w.WriteBlob(val)

	case ion.ListType:
		return transcodeContainer(r, w, w.BeginList, w.EndList)

	case ion.SexpType:
		return transcodeContainer(r, w, w.BeginSexp, w.EndSexp)

	case ion.StructType:
		return transcodeContainer(r, w, w.BeginStruct, w.EndStruct)

	default:
		panic(fmt.Sprintf("bad ion type: %v", r.Type()))
	}
}

func transcodeInt(r ion.Reader, w ion.Writer) error {
	size, err := r.IntSize()
	if err != nil {
		return err
	}

	switch size {
	case ion.Int32, ion.Int64:
		val, err := r.Int64Value()
		if err != nil {
			return err
		}
		return w.WriteInt(*val)

	default:
		val, err := r.BigIntValue()
		if err != nil {
			return err
		}
		return w.WriteBigInt(val)
	}
}

func transcodeContainer(r ion.Reader, w ion.Writer, begin, end func() error) error {
	if err := r.StepIn(); err != nil {
		return err
	}
	if err := begin(); err != nil {
		return err
	}
	if err := transcode(r, w); err != nil {
		return err
	}
	if err := r.StepOut(); err != nil {
		return err
	}
	return end()
}

type uncloseable struct {
	io.Writer
}

func (uncloseable) Close() error { return nil }

func openOutput(name string) (io.WriteCloser, error) {
	if name == "" {
		return uncloseable{os.Stdout}, nil
	}
	return os.OpenFile(name, os.O_RDWR|os.O_TRUNC|os.O_CREATE, 0644)
}
