package dto

// ClassifyPromptItem is one headline sent to the model for triage.
type ClassifyPromptItem struct {
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
	Source string `json:"source"`
	URL    string `json:"url"`
}

// ClassifyPrompt is the JSON body of a classification request.
type ClassifyPrompt struct {
	Instructions string               `json:"instructions"`
	Items        []ClassifyPromptItem `json:"items"`
}

// DecisionHeadline is one headline sent to the model for a ticker decision.
type DecisionHeadline struct {
	Title  string `json:"title"`
	Source string `json:"source"`
}

type DecisionPromptItem struct {
	Ticker    string             `json:"ticker"`
	Headlines []DecisionHeadline `json:"headlines"`
}

// DecisionPrompt is the JSON body of a decision request.
type DecisionPrompt struct {
	Instructions string               `json:"instructions"`
	Items        []DecisionPromptItem `json:"items"`
}
