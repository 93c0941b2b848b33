package main

import "github.com/jrsteele09/go-site-settings/cmd/siteadmin/cmd"

func main() {
	cmd.Execute()
}
