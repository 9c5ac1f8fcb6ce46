// This program provides the wallet CLI for talking to a node's public API.
package main

import "github.com/ardanlabs/corechain/app/wallet/cmd"

func main() {
	cmd.Execute()
}
