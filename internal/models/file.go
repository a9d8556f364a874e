package models

// FileEntry is one direct entry of the storage root.
type FileEntry struct {
	Name        string `json:"name"`
	IsDirectory bool   `json:"isDirectory"`
}
