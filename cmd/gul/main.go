// GUL CLI - runs GUL programs and the interactive REPL.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/calamity10110/gul/interp"
	"github.com/calamity10110/gul/manifest"
	"github.com/calamity10110/gul/source"
)

const version = "3.2.0"

const historyFile = ".gul_history"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl())
	case "version":
		fmt.Println("gul " + version)
	case "help", "-h", "--help":
		usage()
	default:
		// A bare script path works like run.
		if strings.HasSuffix(os.Args[1], ".mn") {
			os.Exit(cmdRun(os.Args[1:]))
		}
		fmt.Fprintf(os.Stderr, "gul: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: gul <command> [arguments]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  run <file> [--debug] [args...]   Run a GUL program\n")
	fmt.Fprintf(os.Stderr, "  repl                             Start the interactive REPL\n")
	fmt.Fprintf(os.Stderr, "  version                          Print the version\n\n")
	fmt.Fprintf(os.Stderr, "Examples:\n")
	fmt.Fprintf(os.Stderr, "  gul run main.mn\n")
	fmt.Fprintf(os.Stderr, "  gul run main.mn --debug input.txt\n")
}

func cmdRun(args []string) int {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		fmt.Fprintln(os.Stderr, "Usage: gul run <file> [--debug] [args...]")
		return 2
	}
	file := args[0]

	verbosity := 0
	for _, a := range args {
		if a == "--debug" {
			verbosity = 2
		}
	}
	commonlog.Configure(verbosity, nil)

	in := interp.New(args)
	if m, err := manifest.FindAndLoad(filepath.Dir(file)); err == nil {
		in.AddSearchPaths(m.ModulePaths()...)
	}

	if err := in.RunFile(file); err != nil {
		fmt.Printf("❌ Error: %s\n", err)
		return 1
	}
	return 0
}

func cmdRepl() int {
	commonlog.Configure(0, nil)
	fmt.Printf("GUL %s REPL (Ctrl+D to exit)\n", version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	// Load history (best-effort)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	in := interp.New(nil)
	if m, err := manifest.FindAndLoad("."); err == nil {
		in.AddSearchPaths(m.ModulePaths()...)
	}

	for {
		code, ok := readStatement(ln)
		if !ok {
			fmt.Println()
			break
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if trimmed == "exit" || trimmed == "quit" {
			break
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		v, err := in.EvalLine(code)
		if err != nil {
			fmt.Println("❌ Error:", err)
			continue
		}
		if v.Kind != interp.KindNone {
			fmt.Println(v.Repr())
		}
	}

	// Persist history (best-effort)
	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return 0
}

// readStatement collects input until every indentation block and paren
// group is closed, so function and struct bodies can be typed across
// lines. Returns ok=false on EOF; Ctrl+C abandons the partial statement.
func readStatement(ln *liner.State) (string, bool) {
	var parts []string
	tracker := source.NewBlockTracker()
	prompt := "gul> "

	for {
		line, err := ln.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			fmt.Println()
			return "", true
		}
		if err != nil {
			return "", false
		}
		parts = append(parts, line)
		for _, l := range source.Split(line) {
			tracker.Feed(l)
		}
		if tracker.InContinuation() {
			prompt = "...> "
			continue
		}
		// A blank line finishes an open block.
		if tracker.Depth() == 0 || strings.TrimSpace(line) == "" {
			return strings.Join(parts, "\n"), true
		}
		prompt = "...> "
	}
}
