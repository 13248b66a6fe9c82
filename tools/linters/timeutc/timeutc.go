// Package timeutc reports time.Now() calls whose result is not pinned to a
// location. Task timestamps are stored in UTC and calendar arithmetic runs
// in the user's zone, so every call must end in .UTC() or .In(loc).
package timeutc

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/types/typeutil"
)

// Analyzer is the timeutc analyzer.
var Analyzer = &analysis.Analyzer{
	Name: "timeutc",
	Doc:  "checks that time.Now() is followed by .UTC() or .In(loc)",
	Run:  run,
}

const message = "time.Now() should be followed by .UTC() or .In(loc) for timezone consistency"

// pinningMethods are the time.Time methods that fix the location.
var pinningMethods = map[string]bool{"UTC": true, "In": true}

func run(pass *analysis.Pass) (any, error) {
	for _, file := range pass.Files {
		pinned := make(map[*ast.CallExpr]bool)

		ast.Inspect(file, func(n ast.Node) bool {
			sel, ok := n.(*ast.SelectorExpr)
			if !ok || !pinningMethods[sel.Sel.Name] {
				return true
			}
			if call, ok := sel.X.(*ast.CallExpr); ok && isTimeNow(pass, call) {
				pinned[call] = true
			}
			return true
		})

		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok || !isTimeNow(pass, call) || pinned[call] {
				return true
			}
			if hasNolintComment(pass, file, call) {
				return true
			}
			pass.Reportf(call.Pos(), message)
			return true
		})
	}

	return nil, nil
}

// isTimeNow resolves the callee, so renamed imports of "time" are caught and
// a local variable named time is not.
func isTimeNow(pass *analysis.Pass, call *ast.CallExpr) bool {
	fn, ok := typeutil.Callee(pass.TypesInfo, call).(*types.Func)
	if !ok || fn.Pkg() == nil {
		return false
	}
	return fn.Pkg().Path() == "time" && fn.Name() == "Now"
}

// hasNolintComment accepts //nolint or //nolint:timeutc on the same line or
// the line before.
func hasNolintComment(pass *analysis.Pass, file *ast.File, call *ast.CallExpr) bool {
	line := pass.Fset.Position(call.Pos()).Line

	for _, cg := range file.Comments {
		for _, comment := range cg.List {
			commentLine := pass.Fset.Position(comment.Pos()).Line
			if commentLine != line && commentLine != line-1 {
				continue
			}
			text := strings.TrimSpace(strings.TrimPrefix(comment.Text, "//"))
			if !strings.HasPrefix(text, "nolint") {
				continue
			}
			directive, _, _ := strings.Cut(text, " ")
			linters, scoped := strings.CutPrefix(directive, "nolint:")
			if !scoped {
				return true
			}
			for name := range strings.SplitSeq(linters, ",") {
				if name == "timeutc" {
					return true
				}
			}
		}
	}

	return false
}
