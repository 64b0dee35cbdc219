package pgrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-referral/internal/domain"
	"github.com/fsdevblog/groph-referral/internal/repository/repoargs"
	"github.com/fsdevblog/groph-referral/pkg/uow"
)

type UserRepository struct {
	conn uow.DBTX
}

func NewUserRepository(conn uow.DBTX) *UserRepository {
	return &UserRepository{conn: conn}
}

const userColumns = `u_id, created_ts, updated_ts, full_name, email, encrypted_password, user_role, total_sales`

// CreateUser создает юзера в базе данных. Идентификатор генерируется на стороне приложения (uuid).
// В случае конфликта email возвращает ошибку domain.ErrDuplicateKey, во всех других случаях - domain.ErrUnknown.
func (u *UserRepository) CreateUser(ctx context.Context, user repoargs.CreateUser) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, `
		INSERT INTO users (u_id, full_name, email, encrypted_password, user_role, total_sales)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		uuid.NewString(), user.FullName, user.Email, user.EncryptedPassword, user.Role, user.TotalSales,
	)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "creating user")
	}
	return dbUser, nil
}

// FindByID ищет юзера по идентификатору. Возвращает ошибку domain.ErrRecordNotFound если запись не найдена,
// во всех других случаях - domain.ErrUnknown.
func (u *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE u_id = $1`, id)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by id %s", id)
	}
	return dbUser, nil
}

// FindByEmail ищет юзера по email. Возвращает ошибку domain.ErrRecordNotFound если запись не найдена,
// во всех других случаях - domain.ErrUnknown.
func (u *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by email %s", email)
	}
	return dbUser, nil
}

func (u *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := u.conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).
		Scan(&exists)
	if err != nil {
		return false, convertErr(err, "checking user existence by email %s", email)
	}
	return exists, nil
}

// DeleteByID удаляет юзера по идентификатору. Бизнес операциями не используется.
func (u *UserRepository) DeleteByID(ctx context.Context, id string) error {
	tag, err := u.conn.Exec(ctx, `DELETE FROM users WHERE u_id = $1`, id)
	if err != nil {
		return convertErr(err, "deleting user by id %s", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "deleting user by id %s", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var m domain.User
	err := row.Scan(
		&m.ID,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.FullName,
		&m.Email,
		&m.EncryptedPassword,
		&m.Role,
		&m.TotalSales,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
