package model

// Item is a post-like entity fetched from the content source.
// Items are immutable once fetched.
type Item struct {
	ID          string `json:"id" bson:"id"`
	ExternalRef string `json:"external_ref" bson:"external_ref"`
	Partition   string `json:"partition" bson:"partition"`
	Author      string `json:"author" bson:"author"`
	ChildCount  int64  `json:"child_count" bson:"child_count"`
	Archived    bool   `json:"archived" bson:"archived"`
	CreatedAt   int64  `json:"created_at" bson:"created_at"` // unix seconds
	Permalink   string `json:"permalink,omitempty" bson:"permalink,omitempty"`
}

// ChildEntry is a comment-like entity attached to an Item.
type ChildEntry struct {
	Body   string `json:"body"`
	Score  int64  `json:"score"`
	Author string `json:"author"`
}
