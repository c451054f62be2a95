package main

import (
	"os"

	_ "github.com/ekaya-inc/ekaya-export/pkg/adapters/datasource/mongodb"
	"github.com/ekaya-inc/ekaya-export/pkg/cli"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	os.Exit(cli.Execute(Version))
}
