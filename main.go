package main

import "github.com/workscope-dev/workscope/internal/cli"

func main() {
	cli.Execute()
}
