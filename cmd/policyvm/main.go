// Command policyvm loads a compiled program and runs one entry point
// against a data/input document pair, printing the result as JSON.
package main

import (
	"encoding/gob"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/ncruces/go-strftime"

	"rvmcore/internal/builtins"
	"rvmcore/internal/diagnostics"
	"rvmcore/internal/engine"
	"rvmcore/internal/program"
	"rvmcore/internal/value"
)

func main() {
	var (
		programPath = flag.String("program", "", "path to a gob-encoded program.Program")
		dataPath    = flag.String("data", "", "path to a JSON data document")
		inputPath   = flag.String("input", "", "path to a JSON input document")
		entryName   = flag.String("entry", "", "entry point name (default: the program's main entry point)")
		entryIndex  = flag.Int("entry-index", -1, "entry point index, overrides -entry")
		maxInstr    = flag.Int("max-instructions", 0, "instruction budget override (0 keeps the engine default)")
	)
	flag.Parse()

	if err := run(*programPath, *dataPath, *inputPath, *entryName, *entryIndex, *maxInstr); err != nil {
		fail(err)
	}
}

func run(programPath, dataPath, inputPath, entryName string, entryIndex, maxInstr int) error {
	if programPath == "" {
		return fmt.Errorf("-program is required")
	}

	prog, err := loadProgram(programPath)
	if err != nil {
		return err
	}

	eng := engine.New(prog)
	if maxInstr > 0 {
		eng.SetMaxInstructions(maxInstr)
	}

	if dataPath != "" {
		v, err := loadJSONValue(dataPath)
		if err != nil {
			return err
		}
		if err := eng.SetData(v); err != nil {
			return err
		}
	}
	if inputPath != "" {
		v, err := loadJSONValue(inputPath)
		if err != nil {
			return err
		}
		eng.SetInput(v)
	}

	started := time.Now()
	var result value.Value
	switch {
	case entryIndex >= 0:
		result, err = eng.ExecuteEntryPointByIndex(entryIndex)
	case entryName != "":
		result, err = eng.ExecuteEntryPointByName(entryName)
	default:
		result, err = eng.Execute()
	}
	elapsed := time.Since(started)

	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(value.ToJSON(result), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if isatty.IsTerminal(os.Stderr.Fd()) {
		ts := strftime.Format("%Y-%m-%d %H:%M:%S", started)
		fmt.Fprintf(os.Stderr, "[%s] evaluated in %s\n", ts, diagnostics.Elapsed(elapsed))
	}
	return nil
}

func loadProgram(path string) (*program.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var p program.Program
	if err := gob.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding program: %w", err)
	}
	names := make([]string, len(p.BuiltinInfoTable))
	for i, info := range p.BuiltinInfoTable {
		names[i] = info.Name
	}
	_, p.ResolvedBuiltins = builtins.Resolve(names)
	return &p, nil
}

func loadJSONValue(path string) (value.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return value.Undefined(), err
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return value.Undefined(), fmt.Errorf("parsing %s: %w", path, err)
	}
	return value.FromJSON(raw), nil
}

func fail(err error) {
	fmt.Fprint(os.Stderr, "policyvm: ")
	diagnostics.Report(os.Stderr, err)
	os.Exit(1)
}
