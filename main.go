package main

import "github.com/agentic-research/primeprep/cmd"

func main() {
	cmd.Execute()
}
