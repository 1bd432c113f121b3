// Command climactl inspects the climate monitor and its collected history.
package main

import "cloudpico-climate/cmd/climactl/cmd"

var version = "dev"

func main() {
	cmd.Execute(version)
}
