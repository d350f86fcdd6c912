package ingest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/robustnas/robq/internal/ingest"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestImportDir_CopySkipReplace(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	dst := filepath.Join(tmp, "data")
	for _, d := range []string{src, dst} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	excludes := []string{".DS_Store", "*.part", "*.tmp"}

	writeFile(t, src, "meta.json", `{"ids": {}}`)
	writeFile(t, src, filepath.Join("cifar10", "clean_accuracy.json"), `{"cifar10": {}}`)
	writeFile(t, src, filepath.Join("cifar10", "clean_cm.json"), `{"cifar10": {}}`)
	writeFile(t, src, "download.part", "junk - must be excluded")

	r1, err := ingest.ImportDir(src, dst, excludes)
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	if r1.Copied != 3 || r1.Skipped != 0 || r1.Replaced != 0 {
		t.Fatalf("first import counts: %+v", r1)
	}
	if _, err := os.Stat(filepath.Join(dst, "download.part")); !os.IsNotExist(err) {
		t.Fatalf("excluded file was copied")
	}

	// Second import: one file unchanged, one changed upstream.
	writeFile(t, src, filepath.Join("cifar10", "clean_accuracy.json"), `{"cifar10": {"clean": {}}}`)

	r2, err := ingest.ImportDir(src, dst, excludes)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if r2.Copied != 0 || r2.Replaced != 1 || r2.Skipped != 2 {
		t.Fatalf("second import counts: %+v", r2)
	}

	got, err := os.ReadFile(filepath.Join(dst, "cifar10", "clean_accuracy.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"cifar10": {"clean": {}}}`+"\n" {
		t.Fatalf("replaced file content stale: %q", string(got))
	}
}

func TestImportDir_ExcludedDirSkipped(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	dst := filepath.Join(tmp, "data")
	writeFile(t, src, filepath.Join(".cache", "blob"), "junk")
	writeFile(t, src, "meta.json", `{"ids": {}}`)

	r, err := ingest.ImportDir(src, dst, []string{".cache"})
	if err != nil {
		t.Fatalf("ImportDir: %v", err)
	}
	if r.Copied != 1 {
		t.Fatalf("expected 1 copied file, got %+v", r)
	}
	if _, err := os.Stat(filepath.Join(dst, ".cache")); !os.IsNotExist(err) {
		t.Fatalf("excluded directory was created")
	}
}
