// Copyright © 2018 The ELPS authors

package main

import "github.com/luthersystems/minischeme/cmd"

func main() {
	cmd.Execute()
}
