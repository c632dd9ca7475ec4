package model

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ParseRole accepts the wire form of a role. Unknown values return false.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleCustomer:
		return RoleCustomer, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

type Status string

const (
	StatusNotVerified         Status = "Not Verified"
	StatusVerified            Status = "Verified"
	StatusNotRequiredVerified Status = "Not Required Verification"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNotVerified, StatusVerified, StatusNotRequiredVerified:
		return true
	default:
		return false
	}
}

type User struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty"`
	Email            string               `bson:"email"`
	FirstName        string               `bson:"firstName"`
	LastName         string               `bson:"lastName"`
	YearOfBirth      int                  `bson:"yearOfBirth,omitempty"`
	Country          string               `bson:"country"`
	City             string               `bson:"city"`
	Role             Role                 `bson:"role"`
	VerificationCode string               `bson:"verificationCode"`
	DateCreated      time.Time            `bson:"dateCreated"`
	PasswordHash     string               `bson:"password"`
	Username         string               `bson:"username"`
	AvatarURL        string               `bson:"avatarURL"`
	SocialAuth       string               `bson:"socialAuth"`
	Occupation       string               `bson:"occupation"`
	Hobby            string               `bson:"hobby"`
	Status           Status               `bson:"status"`
	Followers        []primitive.ObjectID `bson:"followers"`
	Following        []primitive.ObjectID `bson:"following"`
}

// PublicUser is the caller-facing view of a User. It never carries the
// password hash or the verification code.
type PublicUser struct {
	ID          string   `json:"_id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	YearOfBirth int      `json:"yearOfBirth,omitempty"`
	Country     string   `json:"country"`
	City        string   `json:"city"`
	Role        Role     `json:"role"`
	DateCreated string   `json:"dateCreated"`
	Username    string   `json:"username"`
	AvatarURL   string   `json:"avatarURL"`
	SocialAuth  string   `json:"socialAuth"`
	Occupation  string   `json:"occupation"`
	Hobby       string   `json:"hobby"`
	Status      Status   `json:"status"`
	Followers   []string `json:"followers"`
	Following   []string `json:"following"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID.Hex(),
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		YearOfBirth: u.YearOfBirth,
		Country:     u.Country,
		City:        u.City,
		Role:        u.Role,
		DateCreated: u.DateCreated.UTC().Format(time.RFC3339),
		Username:    u.Username,
		AvatarURL:   u.AvatarURL,
		SocialAuth:  u.SocialAuth,
		Occupation:  u.Occupation,
		Hobby:       u.Hobby,
		Status:      u.Status,
		Followers:   hexIDs(u.Followers),
		Following:   hexIDs(u.Following),
	}
}

// UserPatch lists the profile fields a caller may change. Nil means untouched.
type UserPatch struct {
	FirstName   *string
	LastName    *string
	YearOfBirth *int
	Country     *string
	City        *string
	Username    *string
	AvatarURL   *string
	Occupation  *string
	Hobby       *string
}

func (p UserPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.YearOfBirth == nil &&
		p.Country == nil && p.City == nil && p.Username == nil &&
		p.AvatarURL == nil && p.Occupation == nil && p.Hobby == nil
}

// Apply copies the set fields of the patch onto u.
func (p UserPatch) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.YearOfBirth != nil {
		u.YearOfBirth = *p.YearOfBirth
	}
	if p.Country != nil {
		u.Country = *p.Country
	}
	if p.City != nil {
		u.City = *p.City
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.Occupation != nil {
		u.Occupation = *p.Occupation
	}
	if p.Hobby != nil {
		u.Hobby = *p.Hobby
	}
}

// SocialProfile is what an upstream identity provider tells us about a user.
type SocialProfile struct {
	Provider  string
	Email     string
	FirstName string
	LastName  string
	Picture   string
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}
