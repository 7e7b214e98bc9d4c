package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/hexaflex/lc3/vm"
)

// terminal renders machine output on a tcell screen and feeds typed
// keys back as input characters, so GETC reads without waiting for a
// newline. Ctrl-C abandons the program.
type terminal struct {
	screen tcell.Screen
	style  tcell.Style
	row    int
	col    int
}

// runTerminal pumps the machine event loop against an interactive
// terminal.
func (a *App) runTerminal() error {
	t, err := newTerminal()
	if err != nil {
		return err
	}
	defer t.close()

	for {
		switch ev := a.machine.Run().(type) {
		case vm.Output:
			t.print(ev.Char)

		case vm.OutputString:
			t.print(ev.Chars...)

		case vm.ReadChar:
			c, ok := t.readKey()
			if !ok {
				return errors.New("interrupted")
			}
			a.machine.SetInput(c)

		case vm.Halt:
			t.print(stringChars("\nProgram halted. Press any key to exit.")...)
			t.readKey()
			return nil

		case vm.Error:
			return errors.Errorf("at %04x: %s", a.machine.PC(), ev.Msg)
		}
	}
}

func newTerminal() (*terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, errors.Wrap(err, "terminal")
	}
	if err := screen.Init(); err != nil {
		return nil, errors.Wrap(err, "terminal")
	}

	t := &terminal{
		screen: screen,
		style:  tcell.StyleDefault,
	}
	screen.Clear()
	screen.Show()
	return t, nil
}

func (t *terminal) close() {
	t.screen.Fini()
}

// print draws characters at the cursor, handling newlines and
// wrapping; when the cursor falls off the bottom the screen is cleared
// and drawing restarts at the top.
func (t *terminal) print(chars ...uint16) {
	width, height := t.screen.Size()

	for _, c := range chars {
		switch c {
		case '\n':
			t.row++
			t.col = 0
		case '\r':
			t.col = 0
		default:
			t.screen.SetContent(t.col, t.row, rune(c&0xFF), nil, t.style)
			t.col++
			if t.col >= width {
				t.row++
				t.col = 0
			}
		}
		if t.row >= height {
			t.screen.Clear()
			t.row = 0
			t.col = 0
		}
	}

	t.screen.ShowCursor(t.col, t.row)
	t.screen.Show()
}

// readKey blocks until a printable key, Enter or Backspace is typed.
// Returns false if the user interrupts with Ctrl-C or Escape.
func (t *terminal) readKey() (byte, bool) {
	for {
		ev := t.screen.PollEvent()

		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyCtrlC, tcell.KeyEscape:
				return 0, false
			case tcell.KeyEnter:
				return '\n', true
			case tcell.KeyBackspace, tcell.KeyBackspace2:
				return '\b', true
			case tcell.KeyRune:
				r := ev.Rune()
				if r < 0x80 {
					return byte(r), true
				}
			}

		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

func stringChars(s string) []uint16 {
	out := make([]uint16, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = uint16(s[i])
	}
	return out
}
