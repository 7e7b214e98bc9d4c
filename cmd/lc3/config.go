package main

import (
	"flag"
	"fmt"
	"os"
)

// Config defines program configuration.
type Config struct {
	Object   string // Path to the object file to run.
	OSImage  string // Optional OS image; switches trap dispatch to OS mode.
	Terminal bool   // Drive an interactive terminal instead of plain stdio?
	DumpRegs bool   // Print the register file after the program halts?
}

// parseArgs parses command line arguments as applicable.
//
// If an error occurred, this exits the program with an appropriate message.
// When version information is requested, it is printed to stdout and the program ends cleanly.
func parseArgs() *Config {
	var c Config
	c.DumpRegs = true

	flag.Usage = func() {
		fmt.Printf("%s [options] <object file>\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.StringVar(&c.OSImage, "os", c.OSImage, "Load the given OS image and route traps through its vector table.")
	flag.BoolVar(&c.Terminal, "terminal", c.Terminal, "Run in an interactive terminal; keys feed the machine as they are typed.")
	flag.BoolVar(&c.DumpRegs, "dump-regs", c.DumpRegs, "Print the register file after the program halts.")

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

	c.Object = flag.Arg(0)
	return &c
}
