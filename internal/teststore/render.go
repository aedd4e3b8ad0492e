package teststore

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"
)

var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
	DisableMethods:          true,
}

// render returns a stable multi-line dump of v.
func render(v any) string {
	return spewConfig.Sdump(v)
}

// diff returns a unified diff between the renderings of expected and actual.
// It returns "" when the renderings are identical.
func diff(expected, actual any) string {
	e, a := render(expected), render(actual)
	if e == a {
		return ""
	}

	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(e),
		B:        difflib.SplitLines(a),
		FromFile: "Expected",
		ToFile:   "Actual",
		Context:  2,
	})
	if err != nil {
		return "expected:\n" + e + "actual:\n" + a
	}
	return out
}
