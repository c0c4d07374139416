package slate

import "github.com/google/uuid"

// TxProof binds a finalized transaction to the counterparties' relay
// addresses. It is produced only by relay-mediated sends and kept for later
// dispute resolution.
type TxProof struct {
	SlateID         uuid.UUID `json:"slateId"`
	Amount          uint64    `json:"amount"`
	SenderAddress   string    `json:"senderAddress"`
	ReceiverAddress string    `json:"receiverAddress"`
}
