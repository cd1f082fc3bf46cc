package model

// ToDoItem is one task on a user's wedding to-do list. AISent gates vendor
// research: it flips to true the first time research is triggered for the
// task and is never reset by this pipeline.
type ToDoItem struct {
	Task   string `json:"task"`
	AISent bool   `json:"aiSent"`
}

// ToDoSection groups items under a named heading ("6 months out", ...).
type ToDoSection struct {
	Name  string     `json:"name"`
	Items []ToDoItem `json:"items"`
}

// ToDoList is a user's full to-do document. Section order is meaningful:
// research-trigger matching scans sections in declaration order and flags
// only the first unsent match.
type ToDoList struct {
	UserID   string        `json:"userId"`
	Sections []ToDoSection `json:"sections"`
}
