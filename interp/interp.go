package interp

import (
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"

	"github.com/calamity10110/gul/source"
)

var log = commonlog.GetLogger("gul.interp")

// RuntimeError is an error raised while executing GUL code, with the file
// and 1-based line it was raised on.
type RuntimeError struct {
	Msg  string
	File string
	Line int
}

func (e *RuntimeError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

// Interp executes GUL source files. The variable environment is a single
// flat namespace; struct and enum definitions live in their own registries
// and are shared across all loaded files.
type Interp struct {
	env     *Env
	structs map[string]*StructDef
	enums   map[string]*EnumDef

	modules map[string]bool // dotted module key → loaded
	curFile string

	argv        []string
	debug       bool
	searchPaths []string

	out io.Writer
}

// New creates an interpreter. argv becomes the script's sys.argv; passing
// --debug in argv enables statement tracing.
func New(argv []string) *Interp {
	in := &Interp{
		env:     NewEnv(),
		structs: make(map[string]*StructDef),
		enums:   make(map[string]*EnumDef),
		modules: make(map[string]bool),
		argv:    argv,
		out:     os.Stdout,
	}

	registerBuiltins(in)

	for _, a := range argv {
		if a == "--debug" {
			in.debug = true
		}
	}
	if in.debug {
		fmt.Fprintln(in.out, "🐞 Debug mode enabled")
	}

	return in
}

// SetOutput redirects print output, for embedding and tests.
func (in *Interp) SetOutput(w io.Writer) { in.out = w }

// AddSearchPaths appends extra roots consulted when resolving @imp modules.
func (in *Interp) AddSearchPaths(paths ...string) {
	in.searchPaths = append(in.searchPaths, paths...)
}

// Env exposes the variable environment, for the REPL.
func (in *Interp) Env() *Env { return in.env }

// RunFile executes a GUL source file as a program.
func (in *Interp) RunFile(filename string) error {
	fmt.Fprintf(in.out, "🚀 Running: %s\n\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	in.curFile = filename
	lines := source.Split(string(data))

	if _, err := in.execBlock(lines, 0, len(lines)); err != nil {
		return err
	}

	fmt.Fprintf(in.out, "\n✅ Complete!\n")
	return nil
}

// EvalLine executes a single statement or expression in the current
// environment and returns the expression's value, for the REPL.
func (in *Interp) EvalLine(line string) (Value, error) {
	lines := source.Split(line)
	if len(lines) == 0 {
		return None(), nil
	}
	l := lines[0]
	if l.Skippable() {
		return None(), nil
	}
	if isStatementHead(l.Stripped) {
		if _, err := in.execBlock(lines, 0, len(lines)); err != nil {
			return None(), err
		}
		return None(), nil
	}
	if source.AssignIndex(l.Stripped) >= 0 {
		return None(), in.execSimple(l)
	}
	return in.evalSource(l.Stripped, l.Num)
}

// errf raises a runtime error at the given 1-based line of the current file.
func (in *Interp) errf(line int, format string, args ...interface{}) error {
	return &RuntimeError{
		Msg:  fmt.Sprintf(format, args...),
		File: in.curFile,
		Line: line,
	}
}
