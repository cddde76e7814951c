package main

import "github.com/mcoot/vibedraft/internal/cli"

func main() {
	cli.Execute()
}
