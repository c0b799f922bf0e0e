package main

import "github.com/hcopt/jobsub/cmd"

func main() {
	cmd.Execute()
}
