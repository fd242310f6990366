package main

import "github.com/papapumpkin/srvxml/cmd"

func main() {
	cmd.Execute()
}
