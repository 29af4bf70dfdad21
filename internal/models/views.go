package models

import "time"

// BookingView is the full booking representation returned to clients.
type BookingView struct {
	ID     int64         `json:"id"`
	Start  time.Time     `json:"start"`
	End    time.Time     `json:"end"`
	Status BookingStatus `json:"status"`
	Booker User          `json:"booker"`
	Item   Item          `json:"item"`
}

// BookingShort is embedded in item views as last/next booking.
type BookingShort struct {
	ID       int64         `json:"id"`
	BookerID int64         `json:"bookerId"`
	Status   BookingStatus `json:"status"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
}

func ShortOf(b *Booking) *BookingShort {
	if b == nil {
		return nil
	}
	return &BookingShort{ID: b.ID, BookerID: b.BookerID, Status: b.Status, Start: b.Start, End: b.End}
}

type CommentView struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	Created    time.Time `json:"created"`
}

func CommentViewOf(c *Comment) CommentView {
	return CommentView{ID: c.ID, Text: c.Text, AuthorName: c.AuthorName, Created: c.Created}
}

// ItemView is an item enriched with comments and, for its owner, booking neighbours.
type ItemView struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Available   bool          `json:"available"`
	RequestID   *int64        `json:"requestId,omitempty"`
	LastBooking *BookingShort `json:"lastBooking"`
	NextBooking *BookingShort `json:"nextBooking"`
	Comments    []CommentView `json:"comments"`
}

type ItemForRequest struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	RequestID   int64  `json:"requestId"`
	OwnerID     int64  `json:"ownerId"`
}

type RequestView struct {
	ID          int64            `json:"id"`
	Description string           `json:"description"`
	Created     time.Time        `json:"created"`
	Items       []ItemForRequest `json:"items"`
}
