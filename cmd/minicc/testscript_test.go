package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// TestMain lets the testscript-invoked "minicc" binary run in-process as
// this test executable re-executing itself, the standard go-internal/
// testscript pattern for exercising a cmd/ entry point end to end.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"minicc": func() int {
			main()
			return 0
		},
	}))
}

func TestCLIScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}
