package main

import "pfeifer.dev/avsim/cli"

func main() {
	cli.Handle()
}
