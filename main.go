package main

import "sentry-console/cmd"

func main() {
	cmd.Execute()
}
