package main

import (
	_ "github.com/KimMachineGun/automemlimit"

	"github.com/theleeeo/pgjobq/cmd"
)

func main() {
	cmd.Execute()
}
