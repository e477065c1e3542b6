package main

import (
	"fmt"
	"os"

	"tripclerk/expense-engine/cmd/comply"
	"tripclerk/expense-engine/cmd/match"
	"tripclerk/expense-engine/cmd/root"
	"tripclerk/expense-engine/cmd/split"
	"tripclerk/expense-engine/cmd/tax"
	"tripclerk/expense-engine/cmd/validate"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(match.Cmd)
	root.Cmd.AddCommand(split.Cmd)
	root.Cmd.AddCommand(comply.Cmd)
	root.Cmd.AddCommand(tax.Cmd)
	root.Cmd.AddCommand(validate.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
