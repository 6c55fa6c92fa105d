package main

import "github.com/architected-by-miguel/sitecms/cmd/sitecms/cmd"

func main() {
	cmd.Execute()
}
