package domain

// Flair is a link flair template a subreddit offers for submissions.
type Flair struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}
