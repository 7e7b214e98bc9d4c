package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/hexaflex/lc3/vm"
)

// App loads an object file into a fresh machine and pumps its event
// loop until the program halts or fails.
type App struct {
	config  *Config
	fs      afero.Fs
	machine *vm.VM
}

// NewApp creates the application for the given configuration.
func NewApp(c *Config, fs afero.Fs) *App {
	return &App{
		config:  c,
		fs:      fs,
		machine: vm.New(),
	}
}

// Run loads and executes the program.
func (a *App) Run() error {
	if err := a.load(); err != nil {
		return err
	}

	var err error
	if a.config.Terminal {
		err = a.runTerminal()
	} else {
		err = a.runStdio(os.Stdin, os.Stdout)
	}
	if err != nil {
		return err
	}

	if a.config.DumpRegs {
		a.dumpRegisters()
	}
	return nil
}

// load installs the optional OS image and the program object file.
func (a *App) load() error {
	program, err := afero.ReadFile(a.fs, a.config.Object)
	if err != nil {
		return err
	}

	if a.config.OSImage != "" {
		image, err := afero.ReadFile(a.fs, a.config.OSImage)
		if err != nil {
			return err
		}
		if err := a.machine.LoadOSBytes(image); err != nil {
			return errors.Wrap(err, "os image")
		}
		a.machine.SetOSMode(true)
	}

	if err := a.machine.LoadBytes(program); err != nil {
		return errors.Wrap(err, "program")
	}

	if a.config.OSImage != "" {
		// Point the OS boot sequence at the loaded program and start
		// the machine in the OS startup code.
		a.machine.PatchOSUserPC(a.machine.PC())
		a.machine.SetPC(0x0200)
	}
	return nil
}

// runStdio pumps the machine event loop against plain byte streams.
// Input is line buffered by the hosting terminal.
func (a *App) runStdio(in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)
	w := bufio.NewWriter(out)
	defer w.Flush()

	for {
		switch ev := a.machine.Run().(type) {
		case vm.Output:
			w.WriteByte(byte(ev.Char))
			w.Flush()

		case vm.OutputString:
			for _, c := range ev.Chars {
				w.WriteByte(byte(c))
			}
			w.Flush()

		case vm.ReadChar:
			w.Flush()
			c, err := r.ReadByte()
			if err != nil {
				return errors.Wrap(err, "reading input")
			}
			a.machine.SetInput(c)

		case vm.Halt:
			fmt.Fprintf(w, "\nProgram halted.\n")
			return nil

		case vm.Error:
			return errors.Errorf("at %04x: %s", a.machine.PC(), ev.Msg)
		}
	}
}

// dumpRegisters prints the register file the way the machine left it.
func (a *App) dumpRegisters() {
	regs := a.machine.Regs()
	fmt.Println("\nRegisters:")
	for i, v := range regs {
		fmt.Printf("  R%d: x%04X (%d)\n", i, v, int16(v))
	}
	fmt.Printf("  PC: x%04X  PSR: x%04X  COND: %s\n",
		a.machine.PC(), a.machine.PSR(), a.machine.CondString())
}
