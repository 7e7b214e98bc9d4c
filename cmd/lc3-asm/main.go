package main

import (
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/spf13/afero"

	"github.com/hexaflex/lc3/asm"
	"github.com/hexaflex/lc3/disasm"
)

func main() {
	if err := run(parseArgs(), afero.NewOsFs()); err != nil {
		log.Fatal(err)
	}
}

func run(c *Config, fs afero.Fs) error {
	source, err := afero.ReadFile(fs, c.Source)
	if err != nil {
		return err
	}

	unit := asm.Analyze(c.Source, string(source))
	if len(unit.Errors) > 0 {
		for _, e := range unit.Errors {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("%d error(s); no object file written", len(unit.Errors))
	}

	out, err := fs.Create(c.Output)
	if err != nil {
		return err
	}
	defer out.Close()

	img := unit.Image()
	if err := img.Save(out); err != nil {
		return err
	}

	if c.Listing {
		printListing(unit)
	}
	if c.Symbols {
		printSymbols(unit)
	}

	fmt.Printf("Assembled %d words to %s\n", img.Size(), c.Output)
	return nil
}

// printListing writes an address/word/mnemonic listing to stdout.
func printListing(unit *asm.Unit) {
	symbols := disasm.SymbolTable(unit.SymbolAddrs())

	for _, seg := range unit.Segments {
		for i, word := range seg.Code {
			addr := seg.Origin + uint16(i)
			fmt.Printf("%04X  %04X  %s\n", addr, word, disasm.Decode(word, addr+1, symbols))
		}
	}
}

// printSymbols writes the symbol table to stdout, ordered by address.
func printSymbols(unit *asm.Unit) {
	symbols := unit.SymbolAddrs()

	addrs := make([]int, 0, len(symbols))
	for addr := range symbols {
		addrs = append(addrs, int(addr))
	}
	sort.Ints(addrs)

	for _, addr := range addrs {
		fmt.Printf("%04X  %s\n", addr, symbols[uint16(addr)])
	}
}
