package dto

// NewsAPIResponse is the body returned by the /v2/everything endpoint.
type NewsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code,omitempty"`
	Message      string           `json:"message,omitempty"`
	TotalResults int              `json:"totalResults"`
	Articles     []NewsAPIArticle `json:"articles"`
}

type NewsAPIArticle struct {
	Source      NewsAPISource `json:"source"`
	Title       string        `json:"title"`
	URL         string        `json:"url"`
	PublishedAt string        `json:"publishedAt"`
}

type NewsAPISource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
