package main

import "github.com/pders01/git-notebook/cmd"

func main() {
	cmd.Execute()
}
