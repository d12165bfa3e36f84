// Package protocol defines the wire types shared by the Inkwell client and
// server: the page/folder records themselves and the envelopes for the
// name-dispatched mutation and query endpoints.
//
// All timestamps are epoch milliseconds. Records are upserts keyed by ID, so
// replaying the same mutation twice leaves the store unchanged.
package protocol

import "encoding/json"

// TaskPriority is the priority of a task page.
type TaskPriority string

const (
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityNone   TaskPriority = "none"
)

// Valid reports whether p is one of the known priorities. The empty string is
// accepted and treated as "none".
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityHigh, TaskPriorityMedium, TaskPriorityLow, TaskPriorityNone, "":
		return true
	}
	return false
}

// Page is a note or task. A page belongs to at most one container: a folder,
// a parent page, or neither.
type Page struct {
	ID           string  `json:"id"`
	UserID       string  `json:"userId"`
	Content      string  `json:"content"`
	Indent       int     `json:"indent"`
	DailyDate    string  `json:"dailyDate,omitempty"` // YYYY-MM-DD when the page is a daily-journal entry
	FolderID     string  `json:"folderId,omitempty"`
	ParentPageID string  `json:"parentPageId,omitempty"`
	Order        float64 `json:"order"`

	IsTask          bool         `json:"isTask"`
	TaskCompleted   bool         `json:"taskCompleted"`
	TaskCompletedAt int64        `json:"taskCompletedAt,omitempty"`
	TaskDate        string       `json:"taskDate,omitempty"`
	TaskPriority    TaskPriority `json:"taskPriority,omitempty"`

	Starred bool `json:"starred"`

	// Deleted marks a tombstone. Tombstones flow through the change feed so
	// other devices drop the page from their caches.
	Deleted bool `json:"deleted,omitempty"`

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// Folder groups pages into a per-user tree.
type Folder struct {
	ID       string  `json:"id"`
	UserID   string  `json:"userId"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ParentID string  `json:"parentId,omitempty"`
	Order    float64 `json:"order"`
	Deleted  bool    `json:"deleted,omitempty"`

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// Mutation and query names form a closed set on the server; anything else
// arriving over the wire is answered with an unknown-name error.
const (
	MutationPageUpsert   = "pages/upsert"
	MutationPageDelete   = "pages/delete"
	MutationFolderUpsert = "folders/upsert"
	MutationFolderDelete = "folders/delete"

	QueryPageGet    = "pages/get"
	QueryPageList   = "pages/list"
	QueryTaskList   = "tasks/list"
	QueryFolderList = "folders/list"
	QueryChangeFeed = "changes/since"
)

// MutationRequest is the body of POST /api/mutation.
type MutationRequest struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// MutationStatus classifies a mutation outcome. Transport-level failures
// (network errors, 5xx) never produce a status; the client retries those.
type MutationStatus string

const (
	// StatusOK: applied; the response carries the canonical record.
	StatusOK MutationStatus = "ok"
	// StatusInvalid: the operation can never succeed (bad shape, unknown
	// name). The client drops it.
	StatusInvalid MutationStatus = "invalid"
	// StatusConflict: the server holds a newer version; the response carries
	// the server record and the client adopts it.
	StatusConflict MutationStatus = "conflict"
)

// MutationResponse is the per-operation result of a mutation call.
type MutationResponse struct {
	Status  MutationStatus `json:"status"`
	Page    *Page          `json:"page,omitempty"`
	Folder  *Folder        `json:"folder,omitempty"`
	Message string         `json:"message,omitempty"`
}

// PageUpsertArgs creates or overwrites a page. BasisTimestamp is the enqueue
// time of the client operation, compared against the stored UpdatedAt for
// last-write-wins resolution.
type PageUpsertArgs struct {
	Page           Page  `json:"page"`
	BasisTimestamp int64 `json:"basisTimestamp"`
}

// PageDeleteArgs deletes a page. Deleting an absent page is a no-op.
type PageDeleteArgs struct {
	PageID         string `json:"pageId"`
	BasisTimestamp int64  `json:"basisTimestamp"`
}

// FolderUpsertArgs creates or overwrites a folder. The server derives the
// slug from the name.
type FolderUpsertArgs struct {
	Folder         Folder `json:"folder"`
	BasisTimestamp int64  `json:"basisTimestamp"`
}

// FolderDeleteArgs deletes a folder.
type FolderDeleteArgs struct {
	FolderID       string `json:"folderId"`
	BasisTimestamp int64  `json:"basisTimestamp"`
}

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// QueryResponse wraps a query result. Result is the query-specific payload.
type QueryResponse struct {
	Result json.RawMessage `json:"result"`
}

// PageGetArgs fetches a single page.
type PageGetArgs struct {
	PageID string `json:"pageId"`
}

// PageListArgs filters the page listing. Zero-valued fields are ignored.
type PageListArgs struct {
	FolderID     string `json:"folderId,omitempty"`
	ParentPageID string `json:"parentPageId,omitempty"`
	DailyDate    string `json:"dailyDate,omitempty"`
	Starred      bool   `json:"starred,omitempty"`
}

// TaskListArgs filters the task listing.
type TaskListArgs struct {
	IncludeCompleted bool `json:"includeCompleted,omitempty"`
}

// ChangeFeedArgs asks for everything modified after Cursor (exclusive).
type ChangeFeedArgs struct {
	Cursor int64 `json:"cursor"`
}

// Changes is the result of the change feed query. Cursor is the highest
// UpdatedAt seen, to be passed back on the next call. Tombstoned records are
// included.
type Changes struct {
	Pages   []Page   `json:"pages"`
	Folders []Folder `json:"folders"`
	Cursor  int64    `json:"cursor"`
}

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ErrorResponse is the JSON body of a non-2xx answer. RetryAfterSeconds is
// set only for rate-limited logins.
type ErrorResponse struct {
	Error             string `json:"error"`
	RetryAfterSeconds int64  `json:"retryAfterSeconds,omitempty"`
}
