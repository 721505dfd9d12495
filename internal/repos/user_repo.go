package repos

import (
	"errors"

	"chidi/internal/domain"

	"github.com/jmoiron/sqlx"
)

var ErrResetUsed = errors.New("password reset already used")

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, COALESCE(external_id,'') AS external_id, email, name, phone, business_name, business_type,
	location, role, onboarding_completed, password_hash, COALESCE(created_at,'') AS created_at`

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByExternalID(extID string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE external_id=?`, extID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(u domain.User) error {
	_, err := r.DB.NamedExec(`
		INSERT INTO users(id,external_id,email,name,phone,business_name,business_type,location,role,onboarding_completed,password_hash)
		VALUES(:id,NULLIF(:external_id,''),:email,:name,:phone,:business_name,:business_type,:location,:role,:onboarding_completed,:password_hash)
	`, u)
	return err
}

// UpsertExternal creates or refreshes a user mirrored from the identity
// provider, matching on external id first and then on email.
func (r *UserRepo) UpsertExternal(u domain.User) error {
	res, err := r.DB.NamedExec(`
		UPDATE users SET email=:email, name=:name, phone=:phone WHERE external_id=:external_id
	`, u)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	_, err = r.DB.NamedExec(`
		INSERT INTO users(id,external_id,email,name,phone,role)
		VALUES(:id,:external_id,:email,:name,:phone,:role)
		ON CONFLICT(email) DO UPDATE SET
		  external_id=excluded.external_id, name=excluded.name, phone=excluded.phone
	`, u)
	return err
}

func (r *UserRepo) UpdateProfile(u domain.User) error {
	_, err := r.DB.NamedExec(`
		UPDATE users
		SET name=:name, phone=:phone, business_name=:business_name, business_type=:business_type, location=:location
		WHERE id=:id
	`, u)
	return err
}

func (r *UserRepo) CompleteOnboarding(u domain.User) error {
	_, err := r.DB.NamedExec(`
		UPDATE users
		SET business_name=:business_name, business_type=:business_type, location=:location, phone=:phone,
		    onboarding_completed=1
		WHERE id=:id
	`, u)
	return err
}

// Delete removes the user; pending password resets cascade.
func (r *UserRepo) Delete(id string) error {
	_, err := r.DB.Exec(`DELETE FROM users WHERE id=?`, id)
	return err
}

func (r *UserRepo) DeleteByExternalID(extID string) error {
	_, err := r.DB.Exec(`DELETE FROM users WHERE external_id=?`, extID)
	return err
}

type PasswordReset struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	TokenHash string `db:"token_hash"`
	ExpiresAt int64  `db:"expires_at"`
	Used      bool   `db:"used"`
}

func (r *UserRepo) CreateReset(pr PasswordReset) error {
	_, err := r.DB.NamedExec(`
		INSERT INTO password_resets(id,user_id,token_hash,expires_at)
		VALUES(:id,:user_id,:token_hash,:expires_at)
	`, pr)
	return err
}

func (r *UserRepo) Reset(id string) (PasswordReset, error) {
	var pr PasswordReset
	err := r.DB.Get(&pr, `SELECT id,user_id,token_hash,expires_at,used FROM password_resets WHERE id=?`, id)
	return pr, err
}

// ConsumeReset marks the reset used and stores the new hash together.
func (r *UserRepo) ConsumeReset(resetID, userID, hash string) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`UPDATE password_resets SET used=1 WHERE id=? AND used=0`, resetID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrResetUsed
	}
	if _, err := tx.Exec(`UPDATE users SET password_hash=? WHERE id=?`, hash, userID); err != nil {
		return err
	}
	return tx.Commit()
}
