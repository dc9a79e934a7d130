package main

import (
	"vibemesh/cmd"
)

func main() {
	cmd.Execute()
}
