package models

// PageFilter narrows a local page listing. Zero-valued fields are ignored.
type PageFilter struct {
	FolderID     string
	ParentPageID string
	DailyDate    string
	Starred      bool
	TasksOnly    bool
}
