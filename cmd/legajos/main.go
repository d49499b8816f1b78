// Command legajos is the operator CLI: serve, migrate, dedupe, hash-password.
package main

import (
	"os"

	"github.com/turtacn/legajos-penal/internal/interfaces/cli"
)

func main() {
	os.Exit(cli.Execute())
}
