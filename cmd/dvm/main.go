// dvm - inspect and run compiled Daedalus script images
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/daedalus/dat"
	"github.com/chazu/daedalus/manifest"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("daedalus.dvm")

func main() {
	dir := flag.String("C", ".", "Directory to search for daedalus.toml")
	verbosity := flag.Int("v", -1, "Log verbosity, 0 to silence (default from daedalus.toml)")
	logFile := flag.String("log", "", "Write the log to this file instead of stderr")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dvm [options] <command> [arguments]\n\n")
		fmt.Fprintf(os.Stderr, "Inspects and runs compiled Daedalus script images (.DAT).\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCommands:\n")
		fmt.Fprintf(os.Stderr, "  symbols [-format text|yaml] [-class NAME] [FILE.DAT]  List symbols\n")
		fmt.Fprintf(os.Stderr, "  dis [FILE.DAT] FUNC...                                Disassemble functions\n")
		fmt.Fprintf(os.Stderr, "  instances [FILE.DAT] CLASS                            List instances of a class\n")
		fmt.Fprintf(os.Stderr, "  run [-load FILE] [-save FILE] [-init NAMES] [FILE.DAT] FUNC\n")
		fmt.Fprintf(os.Stderr, "                                                        Run a function\n")
		fmt.Fprintf(os.Stderr, "\nFILE.DAT defaults to [program].path from daedalus.toml.\n")
		fmt.Fprintf(os.Stderr, "A state file of \"@\" means [state].output.\n")
	}
	flag.Parse()

	m, err := manifest.FindAndLoad(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if m == nil {
		m = manifest.Default()
	}
	if *verbosity >= 0 {
		m.Log.Verbosity = *verbosity
	}
	logPath := m.LogPath()
	if *logFile != "" {
		logPath = logFile
	}
	commonlog.Configure(m.Log.Verbosity, logPath)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	switch args[0] {
	case "symbols":
		handleSymbolsCommand(args[1:], m)
	case "dis":
		handleDisCommand(args[1:], m)
	case "instances":
		handleInstancesCommand(args[1:], m)
	case "run":
		handleRunCommand(args[1:], m)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		flag.Usage()
		os.Exit(2)
	}
}

// programArgs splits the optional leading image path off args. Without
// one the image configured in the manifest is used.
func programArgs(args []string, m *manifest.Manifest) (string, []string) {
	if len(args) > 0 && strings.EqualFold(filepath.Ext(args[0]), ".dat") {
		return args[0], args[1:]
	}
	if p := m.ProgramPath(); p != "" {
		return p, args
	}
	fmt.Fprintln(os.Stderr, "Error: no program image given and none configured in daedalus.toml")
	os.Exit(2)
	return "", nil
}

func loadProgram(path string) *dat.File {
	f, err := dat.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if f.Truncated() {
		log.Warningf("%s is truncated; loaded %d symbols", path, f.Len())
	}
	log.Infof("loaded %s: %d symbols, %d bytes of code", path, f.Len(), f.Code().Size())
	return f
}

func statePath(v string, m *manifest.Manifest) string {
	if v == "@" {
		return m.StatePath()
	}
	return v
}
