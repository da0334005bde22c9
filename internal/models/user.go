package models

// UserProfile is the directory projection of a user. The authoritative store
// is the managed identity provider; this table mirrors display data only.
type UserProfile struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	ImgURL    string `db:"img_url" json:"img_url,omitempty"`
	ResumeURL string `db:"resume_url" json:"resume_url,omitempty"`
}
