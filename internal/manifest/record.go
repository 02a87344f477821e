package manifest

type (
	// Record is the durable outcome of one deployment run. It is assembled in
	// memory, stamped with the build version, and written verbatim; a later
	// run to the same channel/network replaces it wholesale.
	Record struct {
		Network      string                    `json:"network"`
		ChainID      uint64                    `json:"chainId"`
		Deployer     string                    `json:"deployer"`
		Version      string                    `json:"version"`
		GasPrice     string                    `json:"gasPrice,omitempty"`
		OracleStatus string                    `json:"oracleStatus,omitempty"`
		Contracts    map[string]ContractRecord `json:"contracts"`
	}

	ContractRecord struct {
		Address string `json:"address"`
		TxHash  string `json:"txHash,omitempty"`
	}
)

// Oracle wiring outcomes. Runs that skip wiring leave OracleStatus empty.
const (
	OracleStatusWired   = "wired"
	OracleStatusPending = "pending"
)
