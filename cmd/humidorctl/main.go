// Command humidorctl runs offline maintenance against a humidor data store:
// issuing tokens, printing statistics, importing browser exports and
// moving a user's data between stores.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
