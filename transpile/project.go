package transpile

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("gul.transpile")

// Options controls a project transpile.
type Options struct {
	Entry   string   // entry file name, default main.mn
	Force   bool     // rewrite even when the cache says unchanged
	Exclude []string // directory names skipped during the walk
}

// Summary reports what one project transpile did.
type Summary struct {
	Total   int
	Written int
	Skipped int
	Failed  int
}

// TranspileProject walks srcDir for .mn files and writes the Rust tree
// under destDir, mirroring the directory layout. A failing file is logged
// and skipped; the batch keeps going. Unchanged files are skipped via the
// destination's build cache unless opts.Force is set.
func TranspileProject(srcDir, destDir string, opts Options) (Summary, error) {
	var sum Summary

	if opts.Entry == "" {
		opts.Entry = "main.mn"
	}
	excluded := make(map[string]bool, len(opts.Exclude))
	for _, e := range opts.Exclude {
		excluded[e] = true
	}

	if info, err := os.Stat(srcDir); err != nil || !info.IsDir() {
		return sum, fmt.Errorf("source directory %s: not a directory", srcDir)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return sum, err
	}

	cache := LoadCache(destDir)

	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != srcDir && excluded[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".mn" {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		sum.Total++

		src, err := os.ReadFile(path)
		if err != nil {
			log.Errorf("read %s: %s", path, err.Error())
			sum.Failed++
			return nil
		}

		if !opts.Force && cache.Unchanged(rel, src) {
			sum.Skipped++
			return nil
		}

		out, err := transpileOne(srcDir, rel, src, opts.Entry)
		if err != nil {
			log.Errorf("transpile %s: %s", rel, err.Error())
			sum.Failed++
			return nil
		}

		dest := filepath.Join(destDir, strings.TrimSuffix(filepath.FromSlash(rel), ".mn")+".rs")
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			log.Errorf("mkdir for %s: %s", rel, err.Error())
			sum.Failed++
			return nil
		}
		if err := os.WriteFile(dest, []byte(out), 0o644); err != nil {
			log.Errorf("write %s: %s", dest, err.Error())
			sum.Failed++
			return nil
		}

		cache.Update(rel, src)
		sum.Written++
		log.Infof("transpiled %s", rel)
		return nil
	})
	if err != nil {
		return sum, err
	}

	if err := writeModFiles(srcDir, destDir, excluded); err != nil {
		return sum, err
	}
	if err := cache.Save(); err != nil {
		log.Warningf("saving build cache: %s", err.Error())
	}
	return sum, nil
}

// transpileOne rewrites a single file's body and wraps it in the prelude
// appropriate for its place in the crate.
func transpileOne(srcDir, rel string, src []byte, entry string) (string, error) {
	body := Rewrite(string(src))
	if rel == entry {
		mods, err := siblingModules(srcDir, entry)
		if err != nil {
			return "", err
		}
		return EmitEntry(body, mods), nil
	}
	return EmitModule(body), nil
}

// writeModFiles emits a mod.rs in each destination subdirectory so
// directory modules resolve, declaring one pub mod per child.
func writeModFiles(srcDir, destDir string, excluded map[string]bool) error {
	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		if path != srcDir && excluded[d.Name()] {
			return filepath.SkipDir
		}
		if path == srcDir {
			return nil
		}

		children, err := childModules(path)
		if err != nil || len(children) == 0 {
			return err
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		dir := filepath.Join(destDir, rel)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}

		var sb strings.Builder
		for _, c := range children {
			sb.WriteString("pub mod " + c + ";\n")
		}
		return os.WriteFile(filepath.Join(dir, "mod.rs"), []byte(sb.String()), 0o644)
	})
}

// childModules lists the module names directly inside dir.
func childModules(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var mods []string
	for _, e := range entries {
		if e.IsDir() {
			if hasSourceFiles(filepath.Join(dir, e.Name())) {
				mods = append(mods, e.Name())
			}
			continue
		}
		if filepath.Ext(e.Name()) == ".mn" {
			mods = append(mods, strings.TrimSuffix(e.Name(), ".mn"))
		}
	}
	sort.Strings(mods)
	return mods, nil
}
