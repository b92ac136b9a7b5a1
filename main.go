package main

import "github.com/zoonmattau/budgeter-sub000/cmd"

func main() {
	cmd.Execute()
}
