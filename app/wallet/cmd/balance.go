package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

type balanceResponse struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

// balanceCmd represents the balance command
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance",
	Run: func(cmd *cobra.Command, args []string) {
		privateKey, err := loadPrivateKey(getPrivateKeyPath())
		if err != nil {
			log.Fatal(err)
		}

		address := addressOf(privateKey)
		fmt.Println("for account:", address)

		resp, err := http.Get(fmt.Sprintf("%s/api/balance/%s", url, address))
		if err != nil {
			log.Fatal(err)
		}
		defer resp.Body.Close()

		var balance balanceResponse
		if err := json.NewDecoder(resp.Body).Decode(&balance); err != nil {
			log.Fatal(err)
		}

		fmt.Println(balance.Balance)
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
}
