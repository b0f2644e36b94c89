package realtime

// Named realtime streams used across the application.
//
// Item and borrow-request streams deliver row-level change events to the user
// the row concerns (owner or borrower); the catalog stream fans out to every
// subscriber so stats widgets can refetch.
const (
	StreamItems          = "items"
	StreamBorrowRequests = "borrow_requests"
	StreamCatalog        = "catalog"
)

// Change event kinds mirroring the storage operations that produced them.
const (
	EventInsert = "insert"
	EventUpdate = "update"
	EventDelete = "delete"
)

// AllowedStreams returns the full stream allow-list for authenticated clients.
func AllowedStreams() []string {
	return []string{StreamItems, StreamBorrowRequests, StreamCatalog}
}
