package bundle

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func writeFiles(t *testing.T, dir string, files map[string]string) []string {
	t.Helper()
	var names []string
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		names = append(names, name)
	}
	return names
}

func TestWriteRead(t *testing.T) {
	src := t.TempDir()
	names := writeFiles(t, src, map[string]string{
		"performance_comparison.csv": "Method,Trial\r\nRule_Based,1\r\n",
		"data_summary.json":          `{"data_generation_info":{}}`,
	})

	path := filepath.Join(t.TempDir(), "bundles", "run.gz")
	header, err := Write(path, src, names, "run-1", testTime)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if header.FileCount != 2 || header.RunID != "run-1" || header.Version != FormatVersion {
		t.Errorf("header = %+v", header)
	}

	got, files, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.Checksum != header.Checksum {
		t.Errorf("checksum = %s, want %s", got.Checksum, header.Checksum)
	}
	if !got.CreatedAt.Equal(testTime) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, testTime)
	}

	byName := make(map[string]string)
	for _, f := range files {
		byName[f.Name] = string(f.Content)
	}
	if byName["performance_comparison.csv"] != "Method,Trial\r\nRule_Based,1\r\n" {
		t.Errorf("csv content = %q", byName["performance_comparison.csv"])
	}
}

func TestVerify_DetectsCorruption(t *testing.T) {
	src := t.TempDir()
	names := writeFiles(t, src, map[string]string{"a.csv": "x,y\r\n1,2\r\n"})
	path := filepath.Join(t.TempDir(), "run.gz")
	if _, err := Write(path, src, names, "", testTime); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if _, err := Verify(path); err != nil {
		t.Fatalf("Verify on intact bundle = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)-1] ^= 0xFF
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Verify(path); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("Verify = %v, want ErrChecksumMismatch", err)
	}
	if _, _, err := Read(path); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("Read = %v, want ErrChecksumMismatch", err)
	}
}

func TestWrite_MissingSource(t *testing.T) {
	_, err := Write(filepath.Join(t.TempDir(), "run.gz"), t.TempDir(), []string{"missing.csv"}, "", testTime)
	if err == nil {
		t.Error("expected error for missing source file")
	}
}

func TestReadRaw_BadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gz")
	if err := os.WriteFile(path, []byte(`{"version":99}`+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Verify(path); err == nil {
		t.Error("expected error for unsupported version")
	}

	if err := os.WriteFile(path, []byte("not json\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Verify(path); err == nil {
		t.Error("expected error for unparseable header")
	}
}

func TestExtract(t *testing.T) {
	src := t.TempDir()
	names := writeFiles(t, src, map[string]string{"a.csv": "1", "b.csv": "2"})
	path := filepath.Join(t.TempDir(), "run.gz")
	if _, err := Write(path, src, names, "", testTime); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	dst := filepath.Join(t.TempDir(), "restored")
	if _, err := Extract(path, dst); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	for name, want := range map[string]string{"a.csv": "1", "b.csv": "2"} {
		got, err := os.ReadFile(filepath.Join(dst, name))
		if err != nil {
			t.Fatalf("reading extracted %s: %v", name, err)
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestGeneratePathAndPrune(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 4; i++ {
		p := GeneratePath(dir, testTime.Add(time.Duration(i)*time.Hour))
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	// Unrelated files are left alone
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	removed, err := Prune(dir, 2)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("removed %d bundles, want 2", len(removed))
	}

	left, err := List(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 2 {
		t.Fatalf("%d bundles left, want 2", len(left))
	}
	if filepath.Base(left[0]) != "datagen-bundle-20250601-150000.gz" {
		t.Errorf("newest bundle = %s", filepath.Base(left[0]))
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Error("Prune removed an unrelated file")
	}
}

func TestPrune_Disabled(t *testing.T) {
	removed, err := Prune(t.TempDir(), 0)
	if err != nil || removed != nil {
		t.Errorf("Prune(0) = %v, %v; want nil, nil", removed, err)
	}
	if paths, err := List(filepath.Join(t.TempDir(), "missing")); err != nil || paths != nil {
		t.Errorf("List(missing) = %v, %v; want nil, nil", paths, err)
	}
}
