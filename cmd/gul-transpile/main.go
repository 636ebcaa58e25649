// Batch GUL to Rust transpiler.
// Mirrors a source tree of .mn files into a Rust crate directory.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/calamity10110/gul/manifest"
	"github.com/calamity10110/gul/transpile"
)

func main() {
	force := flag.Bool("force", false, "Rewrite all files, ignoring the build cache")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: gul-transpile [options] [src_dir] [dest_dir]\n\n")
		fmt.Fprintf(os.Stderr, "Transpiles every .mn file under src_dir into Rust under dest_dir.\n")
		fmt.Fprintf(os.Stderr, "Defaults come from gul.toml when present, else compiler -> compiler_rust.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	m, err := manifest.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading gul.toml: %v\n", err)
		os.Exit(1)
	}

	src := m.Transpile.Src
	dest := m.Transpile.Dest
	if flag.NArg() > 0 {
		src = flag.Arg(0)
	}
	if flag.NArg() > 1 {
		dest = flag.Arg(1)
	}

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	fmt.Printf("Transpiling %s -> %s\n", src, dest)

	sum, err := transpile.TranspileProject(src, dest, transpile.Options{
		Entry:   m.Source.Entry,
		Force:   *force,
		Exclude: append([]string{"tests"}, m.Transpile.Exclude...),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ %d files: %d written, %d skipped, %d failed\n",
		sum.Total, sum.Written, sum.Skipped, sum.Failed)
}
