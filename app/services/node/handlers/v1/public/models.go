package public

import "github.com/ardanlabs/corechain/foundation/blockchain/database"

// nodeInfo summarizes this node's view of the network for a client.
type nodeInfo struct {
	TipIndex   uint64 `json:"tip_index"`
	TipHash    string `json:"tip_hash"`
	PeerCount  int    `json:"peer_count"`
	Difficulty uint16 `json:"difficulty"`
}

// chainValid reports whether ValidateOwnChain found the chain sound.
type chainValid struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// newTransaction is the body of a POST /transactions request: a fully
// signed transaction ready to enter the mempool.
type newTransaction struct {
	ID              string                    `json:"id" validate:"required"`
	Sender          database.AccountID        `json:"sender" validate:"required"`
	Recipient       database.AccountID        `json:"recipient" validate:"required"`
	Amount          uint64                    `json:"amount"`
	Timestamp       uint64                    `json:"timestamp" validate:"required"`
	Signature       []byte                    `json:"signature" validate:"required"`
	PublicKey       []byte                    `json:"public_key" validate:"required"`
	ContractPayload *database.ContractPayload `json:"contract_payload,omitempty"`
}

// submitResult reports the outcome of a mempool submission.
type submitResult struct {
	ID           string `json:"id"`
	MempoolCount int    `json:"mempool_count"`
}

// newWalletResponse returns a freshly generated keypair and its derived
// address. The node never retains a copy of the private key.
type newWalletResponse struct {
	Address    string `json:"address"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

// balanceResponse reports one account's current balance.
type balanceResponse struct {
	Address database.AccountID `json:"address"`
	Balance uint64             `json:"balance"`
}

// deployRequest is the body of a POST /contracts/deploy request.
type deployRequest struct {
	ID        string             `json:"id" validate:"required"`
	Sender    database.AccountID `json:"sender" validate:"required"`
	Timestamp uint64             `json:"timestamp" validate:"required"`
	Signature []byte             `json:"signature" validate:"required"`
	PublicKey []byte             `json:"public_key" validate:"required"`
	Source    string             `json:"source" validate:"required"`
}

// deployResponse reports the address a deploy transaction registered its
// contract under, once the transaction is mined.
type deployResponse struct {
	SubmitResult submitResult       `json:"submit_result"`
	Address      database.AccountID `json:"address"`
}

// callRequest is the body of a POST /contracts/call request.
type callRequest struct {
	ID        string             `json:"id" validate:"required"`
	Sender    database.AccountID `json:"sender" validate:"required"`
	Timestamp uint64             `json:"timestamp" validate:"required"`
	Signature []byte             `json:"signature" validate:"required"`
	PublicKey []byte             `json:"public_key" validate:"required"`
	Address   database.AccountID `json:"address" validate:"required"`
	Args      []int64            `json:"args"`
}

// peerInfo is one entry in the /peers response.
type peerInfo struct {
	Host string `json:"host"`
}
