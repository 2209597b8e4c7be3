package main

import "pet-adoption-backend/cmd"

func main() {
	cmd.Run()
}
