// Command jmmc is the CLI driver of spec §6: a single positional
// source-file argument, flags to control optimisation and register
// allocation, and a nonzero exit code whenever compilation reports an
// error.
//
// Grounded on the teacher's main.go for the flag-based, no-subcommands
// shape (parse flags, validate arg count, dispatch to one mode), using
// the standard library flag package as the teacher and every other
// repo in the pack do for a batch one-shot compiler.
package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/marco-vb/jmmc/internal/cliutil"
	"github.com/marco-vb/jmmc/internal/driver"
	"github.com/marco-vb/jmmc/internal/report"
)

func main() {
	optimize := flag.Bool("optimize", false, "run the ConstantOptimiser before lowering")
	registers := flag.Int("registers", -1, "register allocation ceiling; -1 disables allocation")
	outDir := flag.String("o", ".", "directory to write .ollir and .j artifacts into")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		cliutil.Fatal("jmmc: expected exactly one source file argument")
	}

	run(args[0], *optimize, *registers, *outDir)
}

func run(path string, optimize bool, registers int, outDir string) {
	src, err := os.ReadFile(path)
	if err != nil {
		cliutil.Fatal("jmmc: " + err.Error())
	}

	result := driver.Compile(string(src), driver.Options{
		Optimize:        optimize,
		RegisterCeiling: registers,
	})

	for _, rep := range result.Reports {
		cliutil.Printf(os.Stderr, "%s\n", rep.String())
	}
	if report.HasErrors(result.Reports) {
		os.Exit(1)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	ollirPath := filepath.Join(outDir, base+".ollir")
	jasminPath := filepath.Join(outDir, base+".j")

	if err := os.WriteFile(ollirPath, []byte(result.Ollir), 0644); err != nil {
		cliutil.Fatal("jmmc: " + err.Error())
	}
	if err := os.WriteFile(jasminPath, []byte(result.Jasmin), 0644); err != nil {
		cliutil.Fatal("jmmc: " + err.Error())
	}

	cliutil.Printf(os.Stdout, "wrote %s and %s\n", ollirPath, jasminPath)
}
