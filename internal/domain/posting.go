package domain

// Posting is one harvested job listing. Identity is the provider-assigned
// unique string and the natural key; a posting is immutable once harvested.
type Posting struct {
	Identity       string
	Title          string
	Company        string
	CompanyURL     string
	ApplicationURL string
	Location       string
	Description    *string
}

// SeenRecord is the durable per-category marker for a posting that has
// already been evaluated or published. Rows are insert-only: created at most
// once per (category, identity), never updated, never deleted.
type SeenRecord struct {
	Identity       string `db:"job_id"`
	Title          string `db:"job_title"`
	Company        string `db:"company_name"`
	CompanyURL     string `db:"company_url"`
	ApplicationURL string `db:"application_url"`
	Location       string `db:"location"`
}

// RecordFromPosting builds the SeenRecord persisted when a posting is
// committed to the identity store.
func RecordFromPosting(p Posting) SeenRecord {
	return SeenRecord{
		Identity:       p.Identity,
		Title:          p.Title,
		Company:        p.Company,
		CompanyURL:     p.CompanyURL,
		ApplicationURL: p.ApplicationURL,
		Location:       p.Location,
	}
}

// SearchQuery is one bounded request against the listings source.
type SearchQuery struct {
	Term               string
	Location           string
	ResultCap          int
	RecencyWindowHours int
	CompanyID          string // optional provider-side company filter
}
