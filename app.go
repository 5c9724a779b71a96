package main

import "github.com/masmgr/histwalk/cmd"

func main() {
	cmd.Run()
}
