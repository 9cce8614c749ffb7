package models

// Role is the user role reported by user-hub.
type Role int

const (
	RoleAdmin Role = 0
	RoleUser  Role = 1
	RoleGuest Role = 2
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleUser:
		return "user"
	case RoleGuest:
		return "guest"
	default:
		return "unknown"
	}
}

// Gender: 0 unknown, 1 male, 2 female.
type Gender int

// User is the profile kept in the session.
type User struct {
	UserID    string  `json:"user_id"`
	Nickname  string  `json:"nickname,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Gender    *Gender `json:"gender,omitempty"`
	City      string  `json:"city,omitempty"`
	Province  string  `json:"province,omitempty"`
	Status    *int    `json:"status,omitempty"`
	Role      *Role   `json:"role,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

// EffectiveRole returns the user's role, treating a missing role as guest.
func (u *User) EffectiveRole() Role {
	if u == nil || u.Role == nil {
		return RoleGuest
	}
	return *u.Role
}

// AccountDetail is the payload of GET /api/v1/user-hub/profile.
type AccountDetail struct {
	UserID    string  `json:"user_id"`
	Nickname  string  `json:"nickname,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Gender    *Gender `json:"gender,omitempty"`
	City      string  `json:"city,omitempty"`
	Province  string  `json:"province,omitempty"`
	Status    *int    `json:"status,omitempty"`
	UserRole  *Role   `json:"user_role,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

// ToUser maps the account detail onto the session user shape.
func (d *AccountDetail) ToUser() *User {
	return &User{
		UserID:    d.UserID,
		Nickname:  d.Nickname,
		AvatarURL: d.AvatarURL,
		Gender:    d.Gender,
		City:      d.City,
		Province:  d.Province,
		Status:    d.Status,
		Role:      d.UserRole,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type AccountLoginRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

type PhoneLoginRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type CaptchaRequest struct {
	Phone string `json:"phone"`
}

type RegisterRequest struct {
	Account         string `json:"account"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginData is the data part of every login and register response.
type LoginData struct {
	Token struct {
		AccessToken string `json:"access_token"`
	} `json:"token"`
	UserManage struct {
		UserID string `json:"userID"`
	} `json:"userManage"`
}

// TokenPair is returned by the refresh endpoint. The refresh token normally
// travels as a cookie and is usually empty here.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// UpdateProfileRequest carries only the fields being changed.
type UpdateProfileRequest struct {
	Nickname string  `json:"nickname,omitempty"`
	Gender   *Gender `json:"gender,omitempty"`
	City     string  `json:"city,omitempty"`
	Province string  `json:"province,omitempty"`
}
