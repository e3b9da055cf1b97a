package api

// dateFormat is used for selection dates in API payloads.
const dateFormat = "2006-01-02"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ErrorResponse carries a single error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// LoginRequest carries the credentials for a token request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse returns the bearer token with its expiry and the
// authenticated account.
type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	ExpiresAt string `json:"expiresAt"`
	User      User   `json:"user"`
}

// User describes an account in a transport-friendly format.
type User struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FullName  string  `json:"fullName,omitempty"`
	Role      string  `json:"role"`
	Active    bool    `json:"active"`
	AreaID    int64   `json:"areaId,omitempty"`
	StakeID   int64   `json:"stakeId,omitempty"`
	WardIDs   []int64 `json:"wardIds"`
	CreatedAt string  `json:"createdAt,omitempty"`
	UpdatedAt string  `json:"updatedAt,omitempty"`
}

// Hymn describes a catalog entry.
type Hymn struct {
	Number   int      `json:"number"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
}

// SelectedHymn is one slot of a service program. Positions are 1-based and
// position 2 is always the sacrament hymn.
type SelectedHymn struct {
	Position int    `json:"position"`
	Number   int    `json:"number"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

// Selection describes a planned or recorded service program.
type Selection struct {
	ID          int64          `json:"id,omitempty"`
	WardID      int64          `json:"wardId,omitempty"`
	Date        string         `json:"date"`
	SundayLabel string         `json:"sundayLabel"`
	FirstSunday bool           `json:"firstSunday"`
	Festive     bool           `json:"festive"`
	Festivity   string         `json:"festivity,omitempty"`
	HymnCount   int            `json:"hymnCount"`
	Hymns       []SelectedHymn `json:"hymns"`
	Recorded    bool           `json:"recorded"`
	CreatedAt   string         `json:"createdAt,omitempty"`
}

// Ward describes a congregation.
type Ward struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	StakeID   int64  `json:"stakeId,omitempty"`
	StakeName string `json:"stakeName,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Stake describes a stake with its ward count.
type Stake struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	AreaID    int64  `json:"areaId,omitempty"`
	AreaName  string `json:"areaName,omitempty"`
	WardCount int    `json:"wardCount"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Area describes an area with its stake count.
type Area struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	StakeCount int    `json:"stakeCount"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

// CatalogStats summarizes the loaded hymnal.
type CatalogStats struct {
	Total      int            `json:"total"`
	Sacramento int            `json:"sacramento"`
	Categories map[string]int `json:"categories"`
	Tags       []string       `json:"tags"`
}

// PreviewResponse is a program drawn straight from the catalog, with no
// ward history applied and nothing recorded.
type PreviewResponse struct {
	FirstSunday bool           `json:"firstSunday"`
	Festive     bool           `json:"festive"`
	Festivity   string         `json:"festivity,omitempty"`
	HymnCount   int            `json:"hymnCount"`
	Hymns       []SelectedHymn `json:"hymns"`
}

// SelectionRequest describes the Sunday a program is wanted for. A missing
// date means the next Sunday; a missing firstSunday flag is derived from the
// date.
type SelectionRequest struct {
	Date        string `json:"date,omitempty"`
	FirstSunday *bool  `json:"firstSunday,omitempty"`
	Festive     bool   `json:"festive"`
	Festivity   string `json:"festivity,omitempty"`
	Record      *bool  `json:"record,omitempty"`
}

// ReplacementRequest asks for alternatives to one slot of a program.
type ReplacementRequest struct {
	Position    int    `json:"position"`
	Exclude     []int  `json:"exclude,omitempty"`
	Date        string `json:"date,omitempty"`
	FirstSunday *bool  `json:"firstSunday,omitempty"`
	Festive     bool   `json:"festive"`
	Festivity   string `json:"festivity,omitempty"`
}

// ReplacementResponse returns the re-rolled slot.
type ReplacementResponse struct {
	Position int  `json:"position"`
	Hymn     Hymn `json:"hymn"`
}

// CandidatesResponse lists every viable alternative for a slot in catalog
// order.
type CandidatesResponse struct {
	Position   int    `json:"position"`
	Candidates []Hymn `json:"candidates"`
}

// HistoryResponse wraps a ward's recent selections, newest first.
type HistoryResponse struct {
	WardID     int64       `json:"wardId"`
	Selections []Selection `json:"selections"`
}

// WardRequest creates or updates a ward. On update a nil stakeId keeps
// the current assignment and zero clears it; an empty name keeps the
// current one.
type WardRequest struct {
	Name    string `json:"name"`
	StakeID *int64 `json:"stakeId,omitempty"`
}

// StakeRequest creates or updates a stake. Field semantics match
// WardRequest.
type StakeRequest struct {
	Name   string `json:"name"`
	AreaID *int64 `json:"areaId,omitempty"`
}

// AreaRequest creates or renames an area.
type AreaRequest struct {
	Name string `json:"name"`
}

// CreateUserRequest registers an account. Organization references are
// honored only when they match the role.
type CreateUserRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName string  `json:"fullName,omitempty"`
	Role     string  `json:"role"`
	AreaID   int64   `json:"areaId,omitempty"`
	StakeID  int64   `json:"stakeId,omitempty"`
	WardIDs  []int64 `json:"wardIds,omitempty"`
}

// UpdateUserRequest changes account fields; nil fields keep their value.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	FullName *string `json:"fullName,omitempty"`
	Role     *string `json:"role,omitempty"`
	Active   *bool   `json:"active,omitempty"`
	AreaID   *int64  `json:"areaId,omitempty"`
	StakeID  *int64  `json:"stakeId,omitempty"`
}

// UpdateMeRequest changes the caller's own profile. Setting a new
// password requires the current one.
type UpdateMeRequest struct {
	Email           *string `json:"email,omitempty"`
	FullName        *string `json:"fullName,omitempty"`
	Password        *string `json:"password,omitempty"`
	CurrentPassword *string `json:"currentPassword,omitempty"`
}

// AssignWardsRequest replaces a user's ward assignments.
type AssignWardsRequest struct {
	WardIDs []int64 `json:"wardIds"`
}

// AreaListResponse wraps a collection of areas.
type AreaListResponse struct {
	Areas []Area `json:"areas"`
}

// StakeListResponse wraps a collection of stakes.
type StakeListResponse struct {
	Stakes []Stake `json:"stakes"`
}

// WardListResponse wraps a collection of wards.
type WardListResponse struct {
	Wards []Ward `json:"wards"`
}

// UserListResponse wraps a collection of accounts.
type UserListResponse struct {
	Users []User `json:"users"`
}

// CategoriesResponse lists the catalog's category names.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// TagsResponse lists the catalog's tag names.
type TagsResponse struct {
	Tags []string `json:"tags"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Catalog int    `json:"catalog"`
}
