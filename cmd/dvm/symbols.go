package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/chazu/daedalus/dat"
	"github.com/chazu/daedalus/manifest"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// dvm symbols / dis / instances
// ---------------------------------------------------------------------------

// symbolRow is one line of the symbol listing.
type symbolRow struct {
	Index   int       `yaml:"index"`
	Name    string    `yaml:"name"`
	Type    string    `yaml:"type"`
	Count   int       `yaml:"count"`
	Flags   string    `yaml:"flags,omitempty"`
	Parent  string    `yaml:"parent,omitempty"`
	Address uint32    `yaml:"address,omitempty"`
	Ints    []int32   `yaml:"ints,omitempty"`
	Floats  []float32 `yaml:"floats,omitempty"`
	Strings []string  `yaml:"strings,omitempty"`
}

// symbolRows lists f's symbols. A non-empty class keeps only the symbols
// whose parent is that class.
func symbolRows(f *dat.File, class string) ([]symbolRow, error) {
	classIndex := dat.NotFound
	if class != "" {
		classIndex = f.SymbolIndexByName(class)
		if classIndex == dat.NotFound {
			return nil, fmt.Errorf("class %s not found", class)
		}
	}

	var rows []symbolRow
	for i, s := range f.Symbols() {
		if classIndex != dat.NotFound && (!s.HasParent() || int(s.Parent) != classIndex) {
			continue
		}
		row := symbolRow{
			Index: i,
			Name:  s.Name,
			Type:  s.Type().String(),
			Count: s.Count(),
			Flags: s.Props.Flags().String(),
		}
		if s.HasParent() && int(s.Parent) < f.Len() {
			row.Parent = f.SymbolByIndex(int(s.Parent)).Name
		}
		switch s.Type() {
		case dat.TypeFunc, dat.TypePrototype, dat.TypeInstance:
			row.Address = s.Address
		case dat.TypeInt:
			row.Ints = s.Ints().Slice()
		case dat.TypeFloat:
			row.Floats = s.Floats().Slice()
		case dat.TypeString:
			row.Strings = s.Strings().Slice()
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func writeSymbols(w io.Writer, rows []symbolRow, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("encode symbols: %w", err)
		}
		return enc.Close()
	case "text":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, r := range rows {
			where := r.Parent
			if r.Address != 0 {
				where = fmt.Sprintf("@%06d", r.Address)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s[%d]\t%s\t%s\n", r.Index, r.Type, r.Name, r.Count, r.Flags, where)
		}
		return tw.Flush()
	}
	return fmt.Errorf("unknown format %q", format)
}

// defaultFormat is text for a terminal and yaml otherwise.
func defaultFormat() string {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return "text"
	}
	return "yaml"
}

func handleSymbolsCommand(args []string, m *manifest.Manifest) {
	fs := flag.NewFlagSet("symbols", flag.ExitOnError)
	format := fs.String("format", defaultFormat(), "Output format: text or yaml")
	class := fs.String("class", "", "Only list symbols whose parent is this class")
	fs.Parse(args)

	path, _ := programArgs(fs.Args(), m)
	rows, err := symbolRows(loadProgram(path), *class)
	if err == nil {
		err = writeSymbols(os.Stdout, rows, *format)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func handleDisCommand(args []string, m *manifest.Manifest) {
	path, names := programArgs(args, m)
	if len(names) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: dvm dis [FILE.DAT] FUNC...")
		os.Exit(2)
	}
	f := loadProgram(path)
	failed := false
	for _, name := range names {
		i := f.SymbolIndexByName(name)
		if i == dat.NotFound {
			fmt.Fprintf(os.Stderr, "Error: %s not found\n", name)
			failed = true
			continue
		}
		fmt.Print(f.Disassemble(i))
	}
	if failed {
		os.Exit(1)
	}
}

func handleInstancesCommand(args []string, m *manifest.Manifest) {
	path, rest := programArgs(args, m)
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: dvm instances [FILE.DAT] CLASS")
		os.Exit(2)
	}
	f := loadProgram(path)
	n := 0
	f.IterateSymbolsOfClass(rest[0], func(i int, s *dat.Symbol) {
		fmt.Printf("%6d  %s\n", i, s.Name)
		n++
	})
	log.Infof("%d instances of %s", n, rest[0])
}
