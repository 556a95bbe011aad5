// Command desktop opens a window that single-steps a compiled program on the
// emulator, showing the assembly listing next to the machine state.
//
// Keys: space or right arrow steps, backspace or left arrow steps back,
// R runs to completion, Home resets.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"ninecc/pkg/grid"
	"ninecc/pkg/utils"
)

const (
	screenWidth  = 960
	screenHeight = 480

	// ebitenutil's debug font cell.
	charWidth  = 6
	charHeight = 16

	listingCols = 52 // characters reserved for the listing panel
)

type Game struct {
	dbg *debugger
}

func (g *Game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace), inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		g.dbg.step()
	case inpututil.IsKeyJustPressed(ebiten.KeyBackspace), inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		g.dbg.back()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.dbg.run()
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		if err := g.dbg.reset(); err != nil {
			return err
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	px, py := grid.CellOrigin(1, 0, charWidth, charHeight)
	ebitenutil.DebugPrintAt(screen, g.dbg.listingText(), px, py)

	px, py = grid.CellOrigin(listingCols, 0, charWidth, charHeight)
	ebitenutil.DebugPrintAt(screen, g.dbg.stateText(), px, py)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	file := flag.String("f", "", "read the program from a file")
	showAsm := flag.Bool("show-asm", false, "print the generated assembly before opening the window")
	flag.Parse()

	src, name, err := utils.LoadSource(*file, flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, "usage: desktop [-show-asm] (-f file | <program>)")
		log.Fatal(err)
	}

	dbg, err := newDebugger(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *showAsm {
		for _, line := range dbg.listing {
			fmt.Println(line)
		}
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("ninecc debugger - " + name)

	if err := ebiten.RunGame(&Game{dbg: dbg}); err != nil {
		log.Fatal(err)
	}
}
