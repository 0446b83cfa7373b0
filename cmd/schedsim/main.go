// Command schedsim trains a PSO-tuned moldable-job scheduler, or runs its
// fixed benchmark suite, against a YAML config file.
package main

import (
	"log"
	"os"

	"github.com/schedsim/schedsim/cli"
)

func main() {
	args := cli.ParseFlags()

	if err := cli.Run(args); err != nil {
		log.Println("schedsim:", err)
		os.Exit(1)
	}
}
