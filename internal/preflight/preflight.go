package preflight

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll checks that sourceDir is readable, outputDir is writable, and the
// output volume has at least need bytes free.
func RunAll(sourceDir, outputDir string, need int64) []Result {
	results := []Result{
		CheckDirectoryAccess("Source folder", sourceDir, false),
	}
	if outputDir != sourceDir {
		results = append(results, CheckDirectoryAccess("Output folder", outputDir, true))
	}
	results = append(results, CheckFreeSpace("Free space", outputDir, need))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// CheckDirectoryAccess verifies that the directory exists and is readable,
// and writable when write is set.
func CheckDirectoryAccess(name, path string, write bool) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := checkAccess(path, write); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	if write {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckFreeSpace verifies that the volume holding path has need bytes free.
// Platforms without a free-space query pass with an "unknown" detail.
func CheckFreeSpace(name, path string, need int64) Result {
	free, err := FreeBytes(path)
	if err != nil {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("unknown (%v)", err)}
	}
	detail := fmt.Sprintf("%s free, %s needed", humanize.IBytes(uint64(free)), humanize.IBytes(uint64(max(need, 0))))
	if free < need {
		return Result{Name: name, Detail: detail}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}
