package main

import "chessroom/internal/cli"

func main() {
	cli.Execute()
}
