package main

import (
	"github.com/axellelanca/edgelink/cmd"
	_ "github.com/axellelanca/edgelink/cmd/cli"
	_ "github.com/axellelanca/edgelink/cmd/server"
)

func main() {
	cmd.Execute()
}
