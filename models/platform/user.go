package platform

type User struct {
	Base        `json:",inline" bson:",inline"`
	UID         string `json:"uid" bson:"uid"`
	Email       string `json:"email" bson:"email"`
	GivenName   string `json:"given_name" bson:"given_name"`
	FamilyName  string `json:"family_name" bson:"family_name"`
	Role        string `json:"role" bson:"role"`
	CompanyID   string `json:"company_id,omitempty" bson:"company_id,omitempty"`
	CompanyName string `json:"company_name,omitempty" bson:"company_name,omitempty"`
	JobTitle    string `json:"job_title,omitempty" bson:"job_title,omitempty"`
}
