package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const unsorted = "pkg.TestB={\"b\":1}\n\n\npkg.TestA=plain text\n"

func writeSnap(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pkg.snap")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestListFile(t *testing.T) {
	path := writeSnap(t, unsorted)
	buf := &bytes.Buffer{}
	if err := listFile(buf, path, false); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "pkg.TestA=\npkg.TestB=\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	buf.Reset()
	if err := listFile(buf, path, true); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "# "+path+"\npkg.TestA=\npkg.TestB=\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGetValue(t *testing.T) {
	path := writeSnap(t, unsorted)
	tests := []struct {
		name string
		raw  bool
		want string
	}{
		{"pkg.TestB", false, "{\n  \"b\": 1\n}\n"},
		{"pkg.TestB=", true, "{\"b\":1}\n"},
		{"pkg.TestA", false, "plain text\n"},
	}
	for _, tt := range tests {
		buf := &bytes.Buffer{}
		if err := getValue(buf, tt.name, path, tt.raw); err != nil {
			t.Fatal(err)
		}
		if buf.String() != tt.want {
			t.Errorf("getValue(%q, raw=%v) = %q, want %q", tt.name, tt.raw, buf.String(), tt.want)
		}
	}
	if err := getValue(&bytes.Buffer{}, "pkg.Missing", path, false); err == nil {
		t.Error("missing name gave no error")
	}
}

func TestFmtFile(t *testing.T) {
	path := writeSnap(t, unsorted)
	buf := &bytes.Buffer{}
	changed, err := fmtFile(buf, path, false)
	if err != nil {
		t.Fatal(err)
	}
	if !changed || buf.String() != path+"\n" {
		t.Errorf("check: changed=%v output=%q", changed, buf.String())
	}
	if d, _ := os.ReadFile(path); string(d) != unsorted {
		t.Error("check mode rewrote the file")
	}

	if _, err := fmtFile(buf, path, true); err != nil {
		t.Fatal(err)
	}
	d, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "pkg.TestA=plain text\n\npkg.TestB={\"b\":1}\n"; string(d) != want {
		t.Errorf("formatted %q, want %q", d, want)
	}
	changed, err = fmtFile(buf, path, false)
	if err != nil || changed {
		t.Errorf("formatted file still differs: %v %v", changed, err)
	}
}

func TestRmNames(t *testing.T) {
	path := writeSnap(t, unsorted)
	if err := rmNames(path, []string{"pkg.TestB", "pkg.Missing="}, false); err == nil {
		t.Fatal("missing name gave no error")
	}
	d, _ := os.ReadFile(path)
	if string(d) != unsorted {
		t.Errorf("failed rm changed the file: %q", d)
	}
	if err := rmNames(path, []string{"pkg.TestB", "pkg.Missing="}, true); err != nil {
		t.Fatal(err)
	}
	d, _ = os.ReadFile(path)
	if got, want := string(d), "pkg.TestA=plain text\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if err := rmNames(path, []string{"pkg.TestA="}, false); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("empty snapshot file kept: %v", err)
	}
}
