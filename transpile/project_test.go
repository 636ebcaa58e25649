package transpile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

func TestTranspileProject(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	writeTree(t, src, map[string]string{
		"main.mn":        "mn:\n    print(\"hi\")\n",
		"lexer/lexer.mn": "fn lex(src: @str) -> @list[@str]:\n    return @list[]\n",
		"notes.txt":      "ignored",
	})

	sum, err := TranspileProject(src, dest, Options{})
	if err != nil {
		t.Fatalf("TranspileProject: %v", err)
	}
	if sum.Total != 2 || sum.Written != 2 || sum.Failed != 0 {
		t.Errorf("summary = %+v, want 2 written of 2", sum)
	}

	mainRs, err := os.ReadFile(filepath.Join(dest, "main.rs"))
	if err != nil {
		t.Fatalf("main.rs missing: %v", err)
	}
	for _, want := range []string{
		"// Auto-generated from GUL source",
		"pub trait GulString",
		"macro_rules! dict",
		"mod lexer;",
		"fn main() {",
		"println!(\"{}\", \"hi\");",
	} {
		if !strings.Contains(string(mainRs), want) {
			t.Errorf("main.rs missing %q", want)
		}
	}

	lexerRs, err := os.ReadFile(filepath.Join(dest, "lexer", "lexer.rs"))
	if err != nil {
		t.Fatalf("lexer/lexer.rs missing: %v", err)
	}
	if !strings.Contains(string(lexerRs), "fn lex(src: String) -> Vec<String> {") {
		t.Errorf("lexer.rs = %q, want converted signature", lexerRs)
	}
	if strings.Contains(string(lexerRs), "GulString") {
		t.Errorf("lexer.rs carries the entry prelude")
	}

	modRs, err := os.ReadFile(filepath.Join(dest, "lexer", "mod.rs"))
	if err != nil {
		t.Fatalf("lexer/mod.rs missing: %v", err)
	}
	if string(modRs) != "pub mod lexer;\n" {
		t.Errorf("mod.rs = %q, want pub mod lexer", modRs)
	}
}

func TestTranspileProjectCache(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	writeTree(t, src, map[string]string{"main.mn": "mn:\n    pass\n"})

	if _, err := TranspileProject(src, dest, Options{}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	sum, err := TranspileProject(src, dest, Options{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if sum.Skipped != 1 || sum.Written != 0 {
		t.Errorf("unchanged rerun = %+v, want 1 skipped", sum)
	}

	sum, err = TranspileProject(src, dest, Options{Force: true})
	if err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if sum.Written != 1 {
		t.Errorf("forced rerun = %+v, want 1 written", sum)
	}

	writeTree(t, src, map[string]string{"main.mn": "mn:\n    print(1)\n"})
	sum, err = TranspileProject(src, dest, Options{})
	if err != nil {
		t.Fatalf("changed run: %v", err)
	}
	if sum.Written != 1 || sum.Skipped != 0 {
		t.Errorf("changed rerun = %+v, want 1 written", sum)
	}
}

func TestTranspileProjectExclude(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	writeTree(t, src, map[string]string{
		"main.mn":        "mn:\n    pass\n",
		"tests/t.mn":     "mn:\n    pass\n",
		"lexer/lex.mn":   "let a = 1\n",
		"lexer/skip.txt": "x",
	})

	sum, err := TranspileProject(src, dest, Options{Exclude: []string{"tests"}})
	if err != nil {
		t.Fatalf("TranspileProject: %v", err)
	}
	if sum.Total != 2 {
		t.Errorf("summary = %+v, want excluded dir skipped", sum)
	}
	if _, err := os.Stat(filepath.Join(dest, "tests")); !os.IsNotExist(err) {
		t.Errorf("excluded directory was emitted")
	}
}

func TestTranspileProjectBadSource(t *testing.T) {
	if _, err := TranspileProject(filepath.Join(t.TempDir(), "nope"), t.TempDir(), Options{}); err == nil {
		t.Errorf("TranspileProject on missing dir: got nil error")
	}
}

func TestBuildCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := LoadCache(dir)
	if c.Unchanged("a.mn", []byte("x")) {
		t.Errorf("empty cache reported unchanged")
	}
	c.Update("a.mn", []byte("x"))
	if !c.Unchanged("a.mn", []byte("x")) {
		t.Errorf("fresh entry reported changed")
	}
	if c.Unchanged("a.mn", []byte("y")) {
		t.Errorf("modified content reported unchanged")
	}
	if err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	c2 := LoadCache(dir)
	if !c2.Unchanged("a.mn", []byte("x")) {
		t.Errorf("reloaded cache lost entry")
	}
}

func TestEmitEntryModDecls(t *testing.T) {
	out := EmitEntry("fn main() {\n}", []string{"parser", "lexer"})
	li := strings.Index(out, "mod lexer;")
	pi := strings.Index(out, "mod parser;")
	if li < 0 || pi < 0 || li > pi {
		t.Errorf("EmitEntry mod decls wrong or unsorted:\n%s", out)
	}
	if !strings.HasSuffix(strings.TrimRight(out, "\n"), "}") {
		t.Errorf("EmitEntry body missing")
	}
}
