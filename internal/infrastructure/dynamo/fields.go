package dynamo

// DynamoDB attribute names used in expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldCode         = "code"
	fieldIssuedAt     = "issued_at"
	fieldPasswordHash = "password_hash"
	fieldUpdatedAt    = "updated_at"
)
