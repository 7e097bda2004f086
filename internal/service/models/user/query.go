package user

// QueryUsersModel represents filter parameters for querying users.
type QueryUsersModel struct {
	EmailContains string `json:"emailContains,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset,omitempty"`
}
