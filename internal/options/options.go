// Package options contains the program options.
package options

// Parameters contains file path options.
type Parameters struct {
	Input  string `arg:"positional" usage:"assembly source file"`
	Output string `flag:"o" usage:"output .hex file (default: input file with .hex extension)"`
}

// Flags contains behavior options.
type Flags struct {
	Format  string `flag:"format" usage:"output format: plain, ihex (default: detect from output extension)"`
	Verify  bool   `flag:"verify" usage:"read the output back and verify it decodes to the assembled program"`
	Debug   bool   `flag:"d" usage:"enable debug logging"`
	Quiet   bool   `flag:"q" usage:"quiet mode"`
	Version bool   `flag:"V" usage:"print version and exit"`
}

// Program options of the assembler command.
type Program struct {
	Parameters
	Flags
}

// Assembler defines options to control the assembler.
type Assembler struct {
	FailFast     bool // stop at the first error instead of reporting all errors of a stage
	ImplicitHalt bool // append a hlt instruction after the last instruction
	WordsPerLine int  // words per line of the plain hex format
}

// NewAssembler returns a new options instance with default options.
func NewAssembler() Assembler {
	return Assembler{
		WordsPerLine: 1,
	}
}
