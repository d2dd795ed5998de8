package main

import "github.com/JetUni/webiny-js/cmd"

func main() {
	cmd.Execute()
}
