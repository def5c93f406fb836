package main

import "github.com/eventstaff/attendance/cmd"

func main() {
	cmd.Execute()
}
