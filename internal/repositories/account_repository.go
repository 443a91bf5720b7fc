package repositories

import (
	"strings"

	"github.com/anonto42/moments/backend/internal/models"
	"gorm.io/gorm"
)

// AccountRepository stores local email/password accounts.
type AccountRepository interface {
	CreateAccount(account *models.Account) error
	GetAccountByEmail(email string) (*models.Account, error)
	GetAccountByUID(uid string) (*models.Account, error)
}

// PostgresAccountRepository implements AccountRepository for PostgreSQL
type PostgresAccountRepository struct {
	db *gorm.DB
}

func NewPostgresAccountRepository(db *gorm.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

func (r *PostgresAccountRepository) CreateAccount(account *models.Account) error {
	account.Email = strings.ToLower(account.Email)
	return storeError("createAccount", "account", r.db.Create(account).Error)
}

func (r *PostgresAccountRepository) GetAccountByEmail(email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("email = ?", strings.ToLower(email)).First(&account).Error; err != nil {
		return nil, storeError("getAccountByEmail", "account", err)
	}
	return &account, nil
}

func (r *PostgresAccountRepository) GetAccountByUID(uid string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("uid = ?", uid).First(&account).Error; err != nil {
		return nil, storeError("getAccountByUID", "account", err)
	}
	return &account, nil
}
