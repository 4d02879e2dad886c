package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/platformkit/prefabs"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug mode")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	levelName := flag.String("level", "level_playground.yaml", "level spec in prefabs/")
	characterName := flag.String("character", "character.yaml", "character spec in prefabs/")
	watch := flag.Bool("watch", true, "reload specs and scripts from prefabs/ when they change on disk")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("platformkit")

	game, err := NewGame(*levelName, *characterName, *debug)
	if err != nil {
		log.Fatal(err)
	}
	if *watch {
		game.Watch(prefabs.Dir)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
