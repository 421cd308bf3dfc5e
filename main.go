package main

import "github.com/llehouerou/lastmix/cmd"

func main() {
	cmd.Execute()
}
