package main

import "content-cache/cmd"

func main() {
	cmd.Execute()
}
