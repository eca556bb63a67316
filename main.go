package main

import "github.com/kim210603/accent-recognition/cmd"

func main() {
	cmd.Execute()
}
