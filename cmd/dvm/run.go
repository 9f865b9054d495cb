package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chazu/daedalus/dat"
	"github.com/chazu/daedalus/engine"
	"github.com/chazu/daedalus/manifest"
	"github.com/chazu/daedalus/vm"
	"github.com/chazu/daedalus/vm/savestate"
)

// ---------------------------------------------------------------------------
// dvm run
// ---------------------------------------------------------------------------

func handleRunCommand(args []string, m *manifest.Manifest) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	load := fs.String("load", "", "Restore globals from a save state before running")
	save := fs.String("save", "", "Write globals to a save state after running")
	inits := fs.String("init", "", "Comma-separated engine instances to initialize before running")
	fs.Parse(args)

	path, rest := programArgs(fs.Args(), m)
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: dvm run [-load FILE] [-save FILE] [-init NAMES] [FILE.DAT] FUNC")
		os.Exit(2)
	}
	f := loadProgram(path)

	if *load != "" {
		n, err := loadState(f, statePath(*load, m))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		log.Infof("restored %d globals", n)
	}

	machine := newMachine(f, m)
	if *inits != "" {
		if err := initInstances(machine, strings.Split(*inits, ",")); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	ret, calls, err := runNamed(machine, rest[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s returned %d (%d calls)\n", rest[0], ret, calls)

	if *save != "" {
		if err := saveState(f, statePath(*save, m)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// newMachine creates a VM with the engine classes bound that logs calls to
// externals the host does not provide.
func newMachine(f *dat.File, m *manifest.Manifest) *vm.VM {
	if n, err := engine.Register(f); err != nil {
		log.Errorf("engine classes: %v", err)
	} else {
		log.Debugf("bound %d engine class members", n)
	}
	machine := vm.New(f, m.VMOptions()...)
	machine.OnUnsatisfiedCall(func(v *vm.VM) {
		log.Warningf("unsatisfied external %s (called from %v)", v.CurrentCall(), v.CallStack()[1:])
	})
	return machine
}

// initInstances allocates an engine object for each named instance symbol
// and runs its constructor.
func initInstances(machine *vm.VM, names []string) error {
	f := machine.File()
	for _, name := range names {
		name = strings.TrimSpace(name)
		i := f.SymbolIndexByName(name)
		if i == dat.NotFound {
			return fmt.Errorf("instance %s not found", name)
		}
		obj, class, err := engine.New(f, i)
		if err != nil {
			return err
		}
		if err := machine.InitializeInstance(obj, i, class); err != nil {
			return fmt.Errorf("initialize %s: %w", name, err)
		}
		log.Infof("initialized %s as %s", f.SymbolByIndex(i).Name, class)
	}
	return nil
}

// runNamed runs the function name and returns its result and the number of
// calls it made.
func runNamed(machine *vm.VM, name string) (int32, int, error) {
	i := machine.File().SymbolIndexByName(name)
	if i == dat.NotFound {
		return 0, 0, fmt.Errorf("function %s not found", name)
	}
	ret, err := machine.RunFunctionWithProgress(i, func(calls int) {
		log.Debugf("%d calls, in %s", calls, machine.CurrentCall())
	})
	return ret, machine.NumFunctionCalls(), err
}

func loadState(f *dat.File, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("cannot read %s: %w", path, err)
	}
	snap, err := savestate.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return savestate.Restore(f, snap), nil
}

func saveState(f *dat.File, path string) error {
	snap := savestate.Capture(f)
	data, err := savestate.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode save state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	log.Infof("saved %d globals to %s (snapshot %s)", len(snap.Vars), path, snap.ID)
	return nil
}
