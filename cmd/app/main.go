package main

import (
	"github.com/janlopes/HiLo-Game/internal/app"
	"github.com/janlopes/HiLo-Game/internal/config"
)

func main() {
	app.Go(config.Load())
}
