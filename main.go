package main

import "github.com/mj1618/winwatch/cmd"

func main() {
	cmd.Execute()
}
