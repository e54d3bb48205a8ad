package main

import "github.com/ylexus/google-issue-193814298/cmd"

func main() {
	cmd.Execute()
}
