package dto

type RegisterInput struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	PhotoURL     string `json:"photoUrl"`
	FederatedUID string `json:"federatedUid"`
}
