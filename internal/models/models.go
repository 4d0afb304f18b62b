package models

import "time"

// ArticleSource identifies the outlet an article came from.
type ArticleSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Article is a single news item, stored verbatim as the provider returned it.
type Article struct {
	Source      ArticleSource `json:"source"`
	Author      string        `json:"author,omitempty"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url,omitempty"`
	PublishedAt string        `json:"publishedAt,omitempty"`
}

// NewsPayload is the provider response persisted between pipeline stages.
// Articles keep the provider's ordering.
type NewsPayload struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

// QueryDescriptor points the batch summarizer at its inputs. It is written
// next to the news snapshot it references.
type QueryDescriptor struct {
	Query    string `json:"query"`
	FileName string `json:"file_name"`
}

// Summary is the inference output object written to the output bucket.
type Summary struct {
	Summary string `json:"summary"`
}

// QueryRecord is the answered-query event published to Kafka and indexed
// into the history archive.
type QueryRecord struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Country   string    `json:"country,omitempty"`
	Category  string    `json:"category,omitempty"`
	Summary   string    `json:"summary"`
	Backend   string    `json:"backend"`
	Timestamp time.Time `json:"timestamp"`
}
