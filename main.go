package main

import (
	_ "time/tzdata"

	"github.com/Tiliavir/worklog-audit/cmd"
)

func main() {
	cmd.Execute()
}
