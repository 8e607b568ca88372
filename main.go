package main

import "github.com/smd-project/smd/cmd"

func main() {
	cmd.Execute()
}
