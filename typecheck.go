package ember

import (
	"fmt"
	"go/parser"
	"go/scanner"
	"go/token"
)

// TypeCheckingMode controls what happens when the type-safety gate finds
// issues in the source tree.
type TypeCheckingMode string

const (
	// TypeCheckingStrict aborts bootstrap on any reported issue
	TypeCheckingStrict TypeCheckingMode = "strict"
	// TypeCheckingBasic surfaces issues as a warning and continues
	TypeCheckingBasic TypeCheckingMode = "basic"
)

// TypeCheck scans the given source directories and runs the gate over every
// matching file, returning the aggregated report or nil.
func TypeCheck(dirs []string, extension string) error {
	files, err := scanSourceFiles(dirs, extension)
	if err != nil {
		return err
	}
	if report := typeCheck(files); report != nil {
		return report
	}
	return nil
}

// typeCheck parses every discovered source file and aggregates all issues
// into a single TypeSafetyError. A nil return means the tree is clean.
func typeCheck(files []string) *TypeSafetyError {
	var issues []string
	fset := token.NewFileSet()

	for _, file := range files {
		_, err := parser.ParseFile(fset, file, nil, parser.AllErrors)
		if err == nil {
			continue
		}
		if list, ok := err.(scanner.ErrorList); ok {
			for _, e := range list {
				issues = append(issues, e.Error())
			}
			continue
		}
		issues = append(issues, fmt.Sprintf("%s: %v", file, err))
	}

	if len(issues) == 0 {
		return nil
	}
	return &TypeSafetyError{Issues: issues}
}

// enforceTypeChecking applies the configured severity policy to a gate
// report. An unknown severity is a fatal misconfiguration, never a silent
// no-op.
func enforceTypeChecking(mode TypeCheckingMode, report *TypeSafetyError) error {
	if report == nil {
		return nil
	}

	switch mode {
	case TypeCheckingStrict:
		return report
	case TypeCheckingBasic:
		Warn("Type check reported issues", map[string]interface{}{
			"issues": len(report.Issues),
			"detail": report.Error(),
		})
		return nil
	default:
		return fmt.Errorf("unknown type checking mode %q: %w", mode, report)
	}
}
