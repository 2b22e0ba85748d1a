// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/moseschmiedel/masm/internal/options"
	"github.com/moseschmiedel/masm/internal/writer"
)

// ParseFlags parses command line flags and returns program and assembler options
func ParseFlags() (options.Program, options.Assembler, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.SetOutput(io.Discard) // errors are reported by the caller
	var opts options.Program
	asmOptions := options.NewAssembler()
	readOptionFlags(flags, &opts)
	readAssemblerOptionFlags(flags, &asmOptions)

	err := flags.Parse(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return opts, asmOptions, &UsageError{flags: flags, help: true}
	}
	if err != nil {
		return opts, asmOptions, &UsageError{flags: flags, msg: err.Error()}
	}
	if opts.Version {
		return opts, asmOptions, nil
	}

	args := flags.Args()
	if len(args) == 0 {
		return opts, asmOptions, &UsageError{flags: flags, msg: "missing input file"}
	}
	if err := validateArgs(flags, args); err != nil {
		return opts, asmOptions, err
	}
	opts.Input = args[0]

	if err := normalizeOptions(flags, &opts, asmOptions); err != nil {
		return opts, asmOptions, err
	}

	return opts, asmOptions, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
	help  bool // usage was requested explicitly
}

func (e *UsageError) Error() string {
	return e.msg
}

// Help returns whether the usage was requested by the help flag.
func (e *UsageError) Help() bool {
	return e.help
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: rasm [options] <input file>\n\n")
	e.flags.SetOutput(os.Stdout)
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(flags *flag.FlagSet, args []string) error {
	if len(args) < 2 {
		return nil
	}

	arg := args[1]
	msg := fmt.Sprintf("unexpected argument %s, only one input file is supported", arg)
	if arg[0] == '-' {
		msg = fmt.Sprintf("Potential argument %s found after input file, please pass the input file as last argument", arg)
	}
	return &UsageError{flags: flags, msg: msg}
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(flags *flag.FlagSet, opts *options.Program, asmOptions options.Assembler) error {
	if asmOptions.WordsPerLine < 1 {
		return &UsageError{
			flags: flags,
			msg:   fmt.Sprintf("invalid words per line %d, must be at least 1", asmOptions.WordsPerLine),
		}
	}

	if opts.Format == "" {
		return nil
	}
	format, err := writer.ParseFormat(opts.Format)
	if err != nil {
		names := make([]string, 0, len(writer.Formats()))
		for _, f := range writer.Formats() {
			names = append(names, string(f))
		}
		return &UsageError{
			flags: flags,
			msg:   fmt.Sprintf("%s. Valid options: %s", err, strings.Join(names, ", ")),
		}
	}
	opts.Format = string(format)
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Output, "o", "", "name of the output .hex file, input file name with .hex extension if no name given")
	flags.StringVar(&opts.Output, "output", "", "alias for -o")
	flags.StringVar(&opts.Format, "format", "", "output format (plain/ihex), detected from the output file extension if not given")
	flags.BoolVar(&opts.Debug, "d", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Debug, "debug", false, "alias for -d")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.Verify, "verify", false, "verify the generated output by reading it back and decoding it")
	flags.BoolVar(&opts.Version, "V", false, "print version information and exit")
	flags.BoolVar(&opts.Version, "version", false, "alias for -V")
}

func readAssemblerOptionFlags(flags *flag.FlagSet, opts *options.Assembler) {
	flags.BoolVar(&opts.FailFast, "fail-fast", false, "stop at the first error instead of reporting all errors")
	flags.BoolVar(&opts.ImplicitHalt, "halt", false, "append a hlt instruction after the last instruction")
	flags.IntVar(&opts.WordsPerLine, "words-per-line", opts.WordsPerLine, "number of words per line of the plain hex format")
}
