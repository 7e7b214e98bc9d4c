package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// Config defines program configuration.
type Config struct {
	Source  string // Path to the assembly source file.
	Output  string // Path of the object file to write.
	Listing bool   // Print an address/word/mnemonic listing?
	Symbols bool   // Print the symbol table?
}

// parseArgs parses command line arguments as applicable.
//
// If an error occurred, this exits the program with an appropriate message.
// When version information is requested, it is printed to stdout and the program ends cleanly.
func parseArgs() *Config {
	var c Config

	flag.Usage = func() {
		fmt.Printf("%s [options] <source file>\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.StringVar(&c.Output, "o", c.Output, "Path of the object file to write. Defaults to the source path with a .obj extension.")
	flag.BoolVar(&c.Listing, "listing", c.Listing, "Print an address/word/mnemonic listing of the assembled code.")
	flag.BoolVar(&c.Symbols, "symbols", c.Symbols, "Print the symbol table.")

	version := flag.Bool("version", false, "Display version information.")
	flag.Parse()

	if *version {
		fmt.Println(Version())
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	c.Source = flag.Arg(0)
	if c.Output == "" {
		c.Output = objPath(c.Source)
	}
	return &c
}

// objPath derives the default object file path from the source path.
func objPath(src string) string {
	if strings.HasSuffix(src, ".asm") {
		return strings.TrimSuffix(src, ".asm") + ".obj"
	}
	return src + ".obj"
}
