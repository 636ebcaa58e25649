package interp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/calamity10110/gul/source"
)

// loadModule resolves a dotted import like compiler.lexer.lexer to the file
// compiler/lexer/lexer.mn, executes it once, and merges every name the file
// defines into the flat environment. Resolution tries the importing file's
// directory first, then the working directory. A missing module is a
// warning, not an error.
func (in *Interp) loadModule(path []string) error {
	key := strings.Join(path, ".")
	if in.modules[key] {
		return nil
	}

	rel := filepath.Join(path...) + ".mn"
	full := ""
	roots := []string{}
	if in.curFile != "" {
		roots = append(roots, filepath.Dir(in.curFile))
	}
	roots = append(roots, ".")
	roots = append(roots, in.searchPaths...)
	for _, root := range roots {
		candidate := filepath.Join(root, rel)
		if _, err := os.Stat(candidate); err == nil {
			full = candidate
			break
		}
	}
	if full == "" {
		log.Warningf("module %s not found at %s", key, rel)
		fmt.Fprintf(in.out, "Warning: Could not find module %s at %s\n", key, rel)
		in.modules[key] = true
		return nil
	}

	if in.debug {
		log.Debugf("loading module %s from %s", key, full)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return err
	}

	savedFile := in.curFile
	snap := in.env.Snapshot()
	in.curFile = full

	lines := source.Split(string(data))
	c, execErr := in.execBlock(lines, 0, len(lines))
	_ = c // a stray return at module level is ignored

	// Exports are exactly the names the module introduced.
	exports := make(map[string]Value)
	for _, name := range in.env.DiffKeys(snap) {
		if v, ok := in.env.Get(name); ok {
			exports[name] = v
		}
	}

	in.curFile = savedFile
	in.env.Restore(snap)
	in.env.Overlay(exports)
	in.modules[key] = true

	return execErr
}
