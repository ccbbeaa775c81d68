package main

import "github.com/patcli/pat/cmd"

func main() {
	cmd.Execute()
}
