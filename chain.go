package notary

import "time"

// ChainTx is an unsigned transaction payload handed to the caller's wallet
// for signing and submission.
type ChainTx struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// ContractInfo is what a wallet needs to interact with the notary contract.
type ContractInfo struct {
	ContractAddress string `json:"contractAddress"`
	RPCURL          string `json:"rpcUrl"`
}

// Event is broadcast over the signal channel when a document is notarized or
// verified.
type Event struct {
	Type         string       `json:"type"`
	Hash         string       `json:"hash"`
	DocumentType DocumentType `json:"documentType,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
}
