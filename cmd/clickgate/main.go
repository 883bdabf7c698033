package main

import (
	"github.com/clickgate-io/clickgate/cmd"
)

func main() {
	cmd.Execute()
}
