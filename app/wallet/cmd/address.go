package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

// addressCmd represents the address command
var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the address for the specified wallet",
	Run: func(cmd *cobra.Command, args []string) {
		privateKey, err := loadPrivateKey(getPrivateKeyPath())
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(addressOf(privateKey))
	},
}

func init() {
	rootCmd.AddCommand(addressCmd)
}
