package main

import "github.com/cabotage/cabotage/cmd/root"

func main() {
	root.Execute()
}
