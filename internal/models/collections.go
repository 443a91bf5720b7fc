package models

// Document store collection names.
const (
	CollectionPosts         = "posts"
	CollectionUsers         = "users"
	CollectionStories       = "stories"
	CollectionConversations = "conversations"

	SubcollectionComments = "comments"
	SubcollectionMessages = "messages"
)
