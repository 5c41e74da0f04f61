package codec

// CommitmentPayload is what a player submits when committing to a board.
type CommitmentPayload struct {
	Commitment   Commitment `json:"commitment"`
	Proof        []byte     `json:"proof"`
	PublicInputs []byte     `json:"publicInputs"`
}

// HitProofPayload is the defender's answer to one shot.
type HitProofPayload struct {
	Row    uint32 `json:"row"`
	Col    uint32 `json:"col"`
	Result uint32 `json:"result"` // 0 miss, 1 hit
	Proof  []byte `json:"proof"`
}
