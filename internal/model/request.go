package model

import "io"

type SignUpRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Role        string `json:"role"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	YearOfBirth int    `json:"yearOfBirth" validate:"omitempty,min=1900,max=2100"`
	Country     string `json:"country"`
	City        string `json:"city"`
	Username    string `json:"username"`
	Occupation  string `json:"occupation"`
	Hobby       string `json:"hobby"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	YearOfBirth *int    `json:"yearOfBirth" validate:"omitempty,min=1900,max=2100"`
	Country     *string `json:"country"`
	City        *string `json:"city"`
	Username    *string `json:"username"`
	Occupation  *string `json:"occupation"`
	Hobby       *string `json:"hobby"`
}

func (r UpdateUserRequest) Patch() UserPatch {
	return UserPatch{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		YearOfBirth: r.YearOfBirth,
		Country:     r.Country,
		City:        r.City,
		Username:    r.Username,
		Occupation:  r.Occupation,
		Hobby:       r.Hobby,
	}
}

// UploadedFile is one file part of a profile update.
type UploadedFile struct {
	Name    string
	Content io.Reader
}

type CreateCommentRequest struct {
	Text     string `json:"text" validate:"required,max=2000"`
	AnswerTo string `json:"answerTo"`
}

type UserList struct {
	Users []PublicUser `json:"users"`
}
