package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ardanlabs/corechain/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount uint64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a signed transaction to a node",
	Run: func(cmd *cobra.Command, args []string) {
		privateKey, err := loadPrivateKey(getPrivateKeyPath())
		if err != nil {
			log.Fatal(err)
		}

		sender := database.AccountID(addressOf(privateKey))
		recipient := database.AccountID(to)
		tx := database.NewTx(sender, recipient, amount, uint64(time.Now().Unix()))
		tx = tx.Sign(privateKey)

		data, err := json.Marshal(tx)
		if err != nil {
			log.Fatal(err)
		}

		resp, err := http.Post(fmt.Sprintf("%s/api/transactions", url), "application/json", bytes.NewReader(data))
		if err != nil {
			log.Fatal(err)
		}
		defer resp.Body.Close()

		fmt.Println("status:", resp.Status)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Recipient address.")
	sendCmd.MarkFlagRequired("to")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "a", 0, "Amount to send.")
}
