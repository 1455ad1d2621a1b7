package main

import (
	"tsvgen/internal/app"
	"tsvgen/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
