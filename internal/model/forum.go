package model

import "time"

type ForumPost struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ForumThread owns an ordered, append-only list of posts. The first post is the
// thread's opening content.
type ForumThread struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Author    string      `json:"author"`
	Category  string      `json:"category"`
	CreatedAt time.Time   `json:"createdAt"`
	Posts     []ForumPost `json:"posts"`
}

// NewThread is the input of a thread creation.
type NewThread struct {
	Title    string
	Content  string
	Category string
	Author   string
}

// NewReply is the input of a reply to an existing thread.
type NewReply struct {
	ThreadID string
	Content  string
	Author   string
}
