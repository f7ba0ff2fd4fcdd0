package model

import "time"

// CandidateRecord is the persisted "candidate ready" document, keyed
// uniquely by the acceptor item's id. It is created once when a qualifying
// remark is found and updated in place when the remark is later acted on.
type CandidateRecord struct {
	ItemID        string `bson:"item_id"`
	Ready         bool   `bson:"ready"`
	Partition     string `bson:"partition"`
	Text          string `bson:"text"`
	ReferenceLink string `bson:"reference_link,omitempty"`

	Acted    bool      `bson:"acted,omitempty"`
	TextHash string    `bson:"text_hash,omitempty"`
	Actor    string    `bson:"actor,omitempty"`
	ActedAt  time.Time `bson:"acted_at,omitempty"`
}
