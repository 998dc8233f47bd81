package main

import "govector/cmd"

func main() {
	cmd.Execute()
}
