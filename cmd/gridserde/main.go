package main

import (
	"github.com/NVIDIA/gridserde/pkg/cli"
)

func main() {
	cli.Execute()
}
