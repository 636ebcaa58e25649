package transpile

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// entryPrelude heads the crate root. It carries the runtime shims the
// rewritten code leans on: string concatenation over mixed Display types,
// the dict! literal macro, and the sys/fs builtins.
const entryPrelude = `// Auto-generated from GUL source
#![allow(unused_variables, dead_code, unused_mut, unused_imports, non_snake_case)]

use std::collections::{HashMap, HashSet};
use std::fmt::Display;

pub trait GulString {
    fn add_gul<T: Display>(&self, other: T) -> String;
}

impl GulString for String {
    fn add_gul<T: Display>(&self, other: T) -> String {
        format!("{}{}", self, other)
    }
}

impl GulString for &str {
    fn add_gul<T: Display>(&self, other: T) -> String {
        format!("{}{}", self, other)
    }
}

#[macro_export]
macro_rules! dict {
    ($($key:expr => $val:expr),* $(,)?) => {{
        let mut map = HashMap::new();
        $( map.insert($key.to_string(), $val); )*
        map
    }};
    ($($key:ident : $val:expr),* $(,)?) => {{
        let mut map = HashMap::new();
        $( map.insert(stringify!($key).to_string(), $val); )*
        map
    }};
}

// Minimal sys module shim
pub mod sys {
    pub fn argv() -> Vec<String> {
        std::env::args().collect()
    }
}

// Minimal fs module shim
pub fn read_file(path: String) -> String {
    std::fs::read_to_string(path).unwrap_or_default()
}

pub fn write_file(path: String, content: String) {
    let _ = std::fs::write(path, content);
}
`

// modulePrelude heads every non-entry file.
const modulePrelude = `// Auto-generated from GUL source
#![allow(unused_variables, dead_code, unused_mut)]

use std::collections::{HashMap, HashSet, VecDeque};

`

// EmitEntry assembles the crate root: prelude, one mod declaration per
// sibling module, then the rewritten body.
func EmitEntry(body string, mods []string) string {
	var sb strings.Builder
	sb.WriteString(entryPrelude)
	sorted := append([]string(nil), mods...)
	sort.Strings(sorted)
	for _, m := range sorted {
		sb.WriteString("mod " + m + ";\n")
	}
	sb.WriteString("\n")
	sb.WriteString(body)
	sb.WriteString("\n")
	return sb.String()
}

// EmitModule assembles a non-entry file.
func EmitModule(body string) string {
	return modulePrelude + body + "\n"
}

// siblingModules lists the module names next to the entry file: every other
// .mn file and every directory containing one, minus the entry itself.
func siblingModules(srcDir, entry string) ([]string, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var mods []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			mods = append(mods, name)
		}
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			if hasSourceFiles(filepath.Join(srcDir, name)) {
				add(name)
			}
			continue
		}
		if filepath.Ext(name) == ".mn" && name != entry {
			add(strings.TrimSuffix(name, ".mn"))
		}
	}
	sort.Strings(mods)
	return mods, nil
}

func hasSourceFiles(dir string) bool {
	found := false
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() && filepath.Ext(path) == ".mn" {
			found = true
		}
		return nil
	})
	return found
}
