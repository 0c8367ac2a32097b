package checks

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fabriziosalmi/repolizer/internal/coecore"
)

// NewComplexityCheck builds the average-cyclomatic-complexity check. It
// walks each function's AST with go/parser and counts branch statements.
// Only .go files are analyzed; repositories with none are not_applicable.
func NewComplexityCheck() coecore.CheckDescriptor {
	return coecore.CheckDescriptor{
		ID:       "cyclomatic-complexity",
		Category: "maintainability",
		Weight:   1,
		Timeout:  30 * time.Second,
		Run:      runComplexityCheck,
	}
}

func runComplexityCheck(ctx context.Context, h coecore.RepoHandleView) (coecore.RawResult, error) {
	path := h.LocalPath()
	if path == "" {
		return coecore.RawResult{Status: coecore.StatusSkipped, Errors: "no local_path available"}, nil
	}

	files, err := findGoFiles(path)
	if err != nil {
		return coecore.RawResult{}, err
	}
	if len(files) == 0 {
		return coecore.RawResult{Status: coecore.StatusNotApplicable}, nil
	}

	b := NewBuilder()
	var totalComplexity, totalFunctions, maxComplexity int

	for _, file := range files {
		if ctx.Err() != nil {
			return coecore.RawResult{}, ctx.Err()
		}
		fns, err := analyzeFunctionComplexity(file)
		if err != nil {
			continue // unparsable file: skip, don't fail the whole check
		}
		for _, c := range fns {
			totalFunctions++
			totalComplexity += c
			if c > maxComplexity {
				maxComplexity = c
			}
		}
	}

	b.Metric("files_analyzed", len(files))
	b.Metric("functions_analyzed", totalFunctions)
	b.Metric("max_complexity", maxComplexity)

	if totalFunctions == 0 {
		b.Metric("average_complexity", 0.0)
		b.WithScore(100)
		return b.Build(), nil
	}

	avg := float64(totalComplexity) / float64(totalFunctions)
	b.Metric("average_complexity", avg)

	score := 100.0
	switch {
	case avg > 20:
		score = 20
		b.Finding("high", "average cyclomatic complexity is very high", "break large functions into smaller, single-purpose ones")
	case avg > 12:
		score = 50
		b.Finding("medium", "average cyclomatic complexity is high", "consider refactoring the most complex functions")
	case avg > 7:
		score = 75
	}
	if maxComplexity > 30 {
		score -= 10
		b.Finding("medium", "at least one function has very high complexity", "")
	}
	if score < 0 {
		score = 0
	}
	b.WithScore(score)
	return b.Build(), nil
}

func findGoFiles(repoPath string) ([]string, error) {
	var files []string
	err := filepath.Walk(repoPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == "vendor" || info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// analyzeFunctionComplexity returns the cyclomatic complexity of every
// top-level function declared in file.
func analyzeFunctionComplexity(file string) ([]int, error) {
	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, file, nil, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}

	var complexities []int
	ast.Inspect(node, func(n ast.Node) bool {
		if fn, ok := n.(*ast.FuncDecl); ok && fn.Body != nil {
			complexities = append(complexities, cyclomaticComplexity(fn.Body))
		}
		return true
	})
	return complexities, nil
}

func cyclomaticComplexity(body *ast.BlockStmt) int {
	complexity := 1
	ast.Inspect(body, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt, *ast.SwitchStmt, *ast.TypeSwitchStmt, *ast.SelectStmt:
			complexity++
		case *ast.CaseClause:
			if x.List != nil {
				complexity++
			}
		case *ast.BinaryExpr:
			if x.Op == token.LAND || x.Op == token.LOR {
				complexity++
			}
		}
		return true
	})
	return complexity
}
