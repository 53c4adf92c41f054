package main

import "github.com/dexsolver/dexsolver/internal/cli"

func main() {
	cli.Execute()
}
