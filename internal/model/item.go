package model

import "time"

// Item represents a listing offered for borrowing, as stored in the
// `items` table.  Available is a derived gate, not a description: it is
// false exactly while an approved borrow request references the item,
// and the admission checks for new requests depend on it.
//
// Fields:
//  ID          – primary key identifier.
//  OwnerID     – user who listed the item.
//  Title       – short listing title.
//  Description – optional free-form description.
//  Category    – optional category label (e.g. Tools, Electronics).
//  Condition   – optional condition label (e.g. Like New).
//  ImageURL    – optional URL of a listing photo (stored externally).
//  Location    – optional pickup location hint.
//  Available   – false while the item is lent out.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Item struct {
	ID          uint64    // items.id
	OwnerID     uint64    // items.owner_id
	Title       string    // items.title
	Description string    // items.description
	Category    string    // items.category
	Condition   string    // items.item_condition
	ImageURL    string    // items.image_url
	Location    string    // items.location
	Available   bool      // items.available
	CreatedAt   time.Time // items.created_at
	UpdatedAt   time.Time // items.updated_at
}
