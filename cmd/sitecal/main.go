package main

import "github.com/geosurv/sitecal/cmd/sitecal/cmd"

func main() {
	cmd.Execute()
}
