package ember

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSourceTree(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

func TestTypeCheckCleanTree(t *testing.T) {
	dir := writeSourceTree(t, map[string]string{
		"a.go":        cleanSource,
		"nested/b.go": cleanSource,
		"notes.txt":   "not source",
	})

	if err := TypeCheck([]string{dir}, ".go"); err != nil {
		t.Fatalf("Expected a clean tree to pass, got %v", err)
	}
}

func TestTypeCheckAggregatesAllIssues(t *testing.T) {
	dir := writeSourceTree(t, map[string]string{
		"bad1.go": brokenSource,
		"bad2.go": "package sample\n\nvar x = \n",
		"ok.go":   cleanSource,
	})

	files, err := scanSourceFiles([]string{dir}, ".go")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	report := typeCheck(files)
	if report == nil {
		t.Fatal("Expected a report for a broken tree")
	}
	if len(report.Issues) < 2 {
		t.Errorf("Expected issues from every broken file, got %d", len(report.Issues))
	}

	// issues from both files must survive aggregation
	msg := report.Error()
	if !strings.Contains(msg, "bad1.go") || !strings.Contains(msg, "bad2.go") {
		t.Errorf("Expected both files named in the report: %s", msg)
	}
}

func TestTypeCheckHonorsExtensionFilter(t *testing.T) {
	dir := writeSourceTree(t, map[string]string{
		"broken.txt": brokenSource,
	})

	if err := TypeCheck([]string{dir}, ".go"); err != nil {
		t.Fatalf("Expected non-matching files to be skipped, got %v", err)
	}
}

func TestEnforceStrictModeFatal(t *testing.T) {
	report := &TypeSafetyError{Issues: []string{"x"}}
	if err := enforceTypeChecking(TypeCheckingStrict, report); err == nil {
		t.Fatal("Expected strict mode to fail")
	}
}

func TestEnforceBasicModeContinues(t *testing.T) {
	report := &TypeSafetyError{Issues: []string{"x"}}
	if err := enforceTypeChecking(TypeCheckingBasic, report); err != nil {
		t.Fatalf("Expected basic mode to continue, got %v", err)
	}
}

func TestEnforceUnknownModeFatal(t *testing.T) {
	report := &TypeSafetyError{Issues: []string{"x"}}
	err := enforceTypeChecking(TypeCheckingMode("silent"), report)
	if err == nil {
		t.Fatal("Expected an unknown mode to be a misconfiguration, not a no-op")
	}
	if !strings.Contains(err.Error(), "silent") {
		t.Errorf("Expected the unknown mode to be named, got %v", err)
	}
}

func TestEnforceNilReportAlwaysPasses(t *testing.T) {
	for _, mode := range []TypeCheckingMode{TypeCheckingStrict, TypeCheckingBasic} {
		if err := enforceTypeChecking(mode, nil); err != nil {
			t.Errorf("Expected a nil report to pass under %s, got %v", mode, err)
		}
	}
}

func TestScanSourceFilesSorted(t *testing.T) {
	dir := writeSourceTree(t, map[string]string{
		"z.go": cleanSource,
		"a.go": cleanSource,
		"m.go": cleanSource,
	})

	files, err := scanSourceFiles([]string{dir}, ".go")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("Expected three files, got %d", len(files))
	}
	for i := 1; i < len(files); i++ {
		if files[i-1] > files[i] {
			t.Fatalf("Expected sorted output, got %v", files)
		}
	}
}
