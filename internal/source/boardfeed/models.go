package boardfeed

// searchResponse mirrors the board feed API's search result envelope.
type searchResponse struct {
	Jobs  []jobResult `json:"jobs"`
	Count int         `json:"count"`
}

type jobResult struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Company     string  `json:"company"`
	CompanyURL  string  `json:"company_url"`
	JobURL      string  `json:"job_url"`
	Location    string  `json:"location"`
	Description *string `json:"description"`
}
