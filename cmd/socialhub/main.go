package main

import "github.com/kazem-mohamed/socialhub-app/internal/cmd"

func main() {
	cmd.Execute()
}
