package main

import "github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/cmd"

func main() {
	cmd.Execute()
}
