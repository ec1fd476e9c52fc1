package main

import "github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/cli"

func main() {
	cli.Execute()
}
