package main

import "github.com/itsmostafa/liveline/cmd"

func main() {
	cmd.Execute()
}
