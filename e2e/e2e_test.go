//go:build e2e

package e2e_test

import (
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

var meshcacheBinary string

func TestMain(m *testing.M) {
	tmpDir, err := os.MkdirTemp("", "meshcache-e2e-*")
	if err != nil {
		panic(err)
	}

	meshcacheBinary = filepath.Join(tmpDir, "meshcache")

	//nolint:gosec // Building binary with static arguments, not user input
	cmd := exec.Command("go", "build", "-o", meshcacheBinary, "./cmd/meshcache")
	cmd.Dir = ".."
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		panic("failed to build meshcache binary: " + err.Error())
	}

	exitCode := m.Run()

	_ = os.RemoveAll(tmpDir)

	os.Exit(exitCode)
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:   "testdata",
		Setup: setupE2E,
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"sphere": cmdSphere,
		},
	})
}

func setupE2E(env *testscript.Env) error {
	env.Setenv("NO_COLOR", "1")
	env.Setenv("CI", "true")

	binDir := filepath.Dir(meshcacheBinary)
	currentPath := env.Getenv("PATH")
	env.Setenv("PATH", binDir+string(os.PathListSeparator)+currentPath)

	homeDir := filepath.Join(env.WorkDir, ".home")
	if err := os.MkdirAll(homeDir, 0o750); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)

	return nil
}

// cmdSphere writes a particle file of n points on a sphere of radius r.
// Usage: sphere <file> <n> <r>.
func cmdSphere(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("unsupported: ! sphere")
	}
	if len(args) != 3 {
		ts.Fatalf("usage: sphere <file> <n> <r>")
	}
	n, err := strconv.Atoi(args[1])
	ts.Check(err)
	r, err := strconv.ParseFloat(args[2], 64)
	ts.Check(err)

	var b strings.Builder
	golden := math.Pi * (3 - math.Sqrt(5))
	for i := range n {
		y := 1 - 2*(float64(i)+0.5)/float64(n)
		rad := math.Sqrt(1 - y*y)
		theta := golden * float64(i)
		fmt.Fprintf(&b, "%g %g %g\n", r*rad*math.Cos(theta), r*y, r*rad*math.Sin(theta))
	}
	ts.Check(os.WriteFile(ts.MkAbs(args[0]), []byte(b.String()), 0o600))
}
