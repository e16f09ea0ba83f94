package main

import (
	"github.com/AzielCF/az-plant/cmd"
)

func main() {
	cmd.Execute()
}
