package main

import "github.com/geraldpeng6/sks-installer/cmd/sks-installer/cmd"

func main() {
	cmd.Execute()
}
