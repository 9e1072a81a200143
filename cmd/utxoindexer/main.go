// Command utxoindexer runs the indexer service and talks to a running one.
//
//	utxoindexer serve
//	utxoindexer submit --file block.json
//	utxoindexer balance --address addr1
//	utxoindexer rollback --height 10
//	utxoindexer height
package main

import (
	"fmt"
	"os"

	"github.com/ordishs/gocore"
)

// Name used by build script for the binaries. (Please keep on single line)
const progname = "utxoindexer"

// Version & commit strings injected at build with -ldflags -X...
var (
	version string
	commit  string
)

func init() {
	gocore.SetInfo(progname, version, commit)
}

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
