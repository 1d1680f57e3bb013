package entity

import "time"

// Account status values.
const (
	StatusNormal   = "normal"
	StatusDisabled = "disabled"
)

// Account roles, embedded in issued tokens as the authorization claim.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account row in the `users` table. Username and phone
// are each unique across all accounts; PasswordHash is a bcrypt digest and
// is loaded only on the login and password-change read paths.
type User struct {
	ID            int64     `db:"id"`
	Username      string    `db:"username"`
	PasswordHash  string    `db:"password_hash"`
	RealName      string    `db:"real_name"`
	Phone         string    `db:"phone"`
	Avatar        *string   `db:"avatar"`
	Gender        string    `db:"gender"`
	Birthday      string    `db:"birthday"`
	IDCardPhoto   string    `db:"id_card_photo"`
	AlipayAccount string    `db:"alipay_account"`
	SesameCredit  int       `db:"sesame_credit"`
	Status        string    `db:"status"`
	Role          string    `db:"role"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Profile is the public projection of a User returned by every read path.
// It never carries the password hash.
type Profile struct {
	UserID        int64     `json:"userId,string"`
	Username      string    `json:"username"`
	RealName      string    `json:"realName"`
	Phone         string    `json:"phone"`
	IDCardPhoto   string    `json:"idCardPhoto"`
	AlipayAccount string    `json:"alipayAccount"`
	SesameCredit  int       `json:"sesameCredit"`
	Status        string    `json:"status"`
	Role          string    `json:"role"`
	Avatar        *string   `json:"avatar"`
	Gender        string    `json:"gender"`
	Birthday      string    `json:"birthday"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Profile returns the public view of the account.
func (u *User) Profile() Profile {
	return Profile{
		UserID:        u.ID,
		Username:      u.Username,
		RealName:      u.RealName,
		Phone:         u.Phone,
		IDCardPhoto:   u.IDCardPhoto,
		AlipayAccount: u.AlipayAccount,
		SesameCredit:  u.SesameCredit,
		Status:        u.Status,
		Role:          u.Role,
		Avatar:        u.Avatar,
		Gender:        u.Gender,
		Birthday:      u.Birthday,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
