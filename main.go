package main

import "github.com/princespaghetti/sdmc/internal/cli"

func main() {
	cli.Execute()
}
