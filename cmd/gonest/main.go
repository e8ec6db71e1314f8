package main

import "github.com/dbsmedya/gonest/cmd/gonest/cmd"

func main() {
	cmd.Execute()
}
