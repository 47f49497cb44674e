package dto

// UpdateProfileInput uses pointers so that an omitted field is left untouched.
type UpdateProfileInput struct {
	FullName *string `json:"fullName"`
	Phone    *string `json:"phone"`
	PhotoURL *string `json:"photoUrl"`
	Password *string `json:"password"`
}
