package model

// Ticket is a proof-of-completion artifact produced by a node. Tickets
// are immutable once listed; the filename doubles as the retrieval key.
type Ticket struct {
	Filename  string `json:"filename"`
	Size      int64  `json:"size"`
	CreatedAt int64  `json:"created_at"`
}
