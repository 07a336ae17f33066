package model

import "time"

// ReviewComment is an issue-level comment on a pull request.
type ReviewComment struct {
	ID      int64
	Issue   IssueRef
	Author  string
	Body    string
	HTMLURL string
}

// UploadRecord maps an image content hash to its published URL.
type UploadRecord struct {
	Hash      string
	URL       string
	CreatedAt time.Time
}
